package docx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	godocx "github.com/fumiama/go-docx"
	"github.com/go-playground/assert/v2"

	"question-builder/api/internal/paper"
)

func paragraphs(t *testing.T, data []byte) []*godocx.Paragraph {
	t.Helper()
	d, err := godocx.Parse(bytes.NewReader(data), int64(len(data)))
	assert.Equal(t, nil, err)
	var out []*godocx.Paragraph
	for _, it := range d.Document.Body.Items {
		if p, ok := it.(*godocx.Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

func texts(ps []*godocx.Paragraph) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

func centered(p *godocx.Paragraph) bool {
	return p.Properties != nil && p.Properties.Justification != nil && p.Properties.Justification.Val == "center"
}

// runProps returns the first run's properties; a run without any comes back empty.
func runProps(t *testing.T, p *godocx.Paragraph) *godocx.RunProperties {
	t.Helper()
	for _, c := range p.Children {
		if r, ok := c.(*godocx.Run); ok {
			if r.RunProperties == nil {
				return &godocx.RunProperties{}
			}
			return r.RunProperties
		}
	}
	t.Fatalf("paragraph %q has no run", p.String())
	return nil
}

func TestRender(t *testing.T) {
	p := paper.ExamPaper{
		SchoolName: "Saraswati Vidya Mandir",
		ExamTitle:  "Half Yearly Exam",
		ClassName:  "7",
		Subject:    "Hindi",
		MaxMarks:   50,
		Duration:   "2 hours",
		Sections: []paper.Section{
			{
				Name:         "Q.No.1 रिक्त स्थान भरिए",
				Instructions: "All questions are compulsory",
				Questions: []paper.Question{
					{Number: 1, Text: "भारत की राजधानी ____ है।", Marks: 1, Language: paper.LangHindi},
					{Number: 2, Text: "a < b & c", Marks: 2},
				},
			},
		},
	}
	data, err := Render(p)
	assert.Equal(t, nil, err)

	ps := paragraphs(t, data)
	assert.Equal(t, []string{
		"Saraswati Vidya Mandir",
		"Half Yearly Exam",
		"",
		"Class: 7    Subject: Hindi",
		"Max Marks: 50    Duration: 2 hours",
		strings.Repeat("-", 60),
		"Q.No.1 रिक्त स्थान भरिए",
		"All questions are compulsory",
		"Q1. भारत की राजधानी ____ है।   [1 Marks]",
		"Q2. a < b & c   [2 Marks]",
		"",
	}, texts(ps))

	for _, i := range []int{0, 1} {
		assert.Equal(t, true, centered(ps[i]))
		assert.Equal(t, true, runProps(t, ps[i]).Bold != nil)
	}
	assert.Equal(t, false, centered(ps[3]))
	assert.Equal(t, true, runProps(t, ps[6]).Bold != nil)
	assert.Equal(t, true, runProps(t, ps[7]).Italic != nil)
	assert.Equal(t, true, runProps(t, ps[8]).Bold == nil)
}

func TestRender_SkipsEmptyHeader(t *testing.T) {
	data, err := Render(paper.ExamPaper{Sections: []paper.Section{{Questions: []paper.Question{{Number: 1, Text: "x"}}}}})
	assert.Equal(t, nil, err)

	ps := paragraphs(t, data)
	for _, p := range ps {
		assert.Equal(t, false, centered(p))
	}
	assert.Equal(t, "", ps[0].String())
	assert.Equal(t, "Class:     Subject: ", ps[1].String())
	assert.Equal(t, "Q1. x   [0 Marks]", ps[4].String())
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "QuestionPaper_Science_202403091405.docx", FileName("Science", now))
	assert.Equal(t, "QuestionPaper_a_b_202403091405.docx", FileName(" a/b ", now))
}
