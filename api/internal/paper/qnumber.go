package paper

import (
	"regexp"
	"strconv"
)

// UnnumberedSection is the sort key for sections whose name has no question number.
const UnnumberedSection = 9999

var (
	// "Q.No.1", "Q. No. 1", "q no 1", "QNo1", "Q.No:3", "Q No-4"
	qNoRe = regexp.MustCompile(`(?i)\bQ[\s.:\-)]*No[\s.:\-]*(\d+)`)
	// "Q.1", "Q 1", "Q1", "Q-1", "Q:2", "Q)6"
	qRe = regexp.MustCompile(`(?i)\bQ[\s.:\-)]*(\d+)`)
)

// QuestionGroupNumber extracts the question-group number embedded in a section name.
// The explicit "Q.No.N" form is tried before the bare "Q.N" form.
func QuestionGroupNumber(name string) (int, bool) {
	for _, re := range []*regexp.Regexp{qNoRe, qRe} {
		if m := re.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func sectionSortKey(name string) int {
	if n, ok := QuestionGroupNumber(name); ok {
		return n
	}
	return UnnumberedSection
}
