package paper

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Language of a single question as reported by the model.
type Language string

const (
	LangHindi    Language = "Hindi"
	LangEnglish  Language = "English"
	LangSanskrit Language = "Sanskrit"
	LangMixed    Language = "Mixed"
)

// ExamPaper is the shape consumed by the question-builder client.
type ExamPaper struct {
	SchoolName string    `json:"schoolName"`
	ExamTitle  string    `json:"examTitle"`
	ClassName  string    `json:"class"`
	Subject    string    `json:"subject"`
	MaxMarks   FlexInt   `json:"maxMarks"`
	Duration   string    `json:"duration"`
	Sections   []Section `json:"sections"`
}

type Section struct {
	Name         string     `json:"name"`         // e.g. "Q.No.1 Answer the following"
	Instructions string     `json:"instructions"` // may be empty
	Questions    []Question `json:"questions"`
}

type Question struct {
	Number   FlexInt  `json:"number"`
	Text     string   `json:"text"`
	Marks    FlexInt  `json:"marks"`
	Language Language `json:"language,omitempty"`
}

// QuestionCount sums questions over all sections.
func (p ExamPaper) QuestionCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Questions)
	}
	return n
}

// Defaults are the caller-supplied metadata used when the model omits a field.
// Empty values are allowed.
type Defaults struct {
	SchoolName string
	ExamTitle  string
	ClassName  string
	Subject    string
	MaxMarks   int
	Duration   string
}

// FlexInt accepts 12, 12.0 and "12"; models are not consistent about numbers.
// Anything else decodes to 0.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = FlexInt(math.Trunc(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*n = FlexInt(v)
			return nil
		}
	}
	*n = 0
	return nil
}
