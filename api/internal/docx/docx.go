// Package docx renders an exam paper as a Word (.docx) document.
package docx

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	godocx "github.com/fumiama/go-docx"

	"question-builder/api/internal/paper"
)

const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// FileName builds "QuestionPaper_<subject>_<yyyyMMddHHmm>.docx".
func FileName(subject string, now time.Time) string {
	subject = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(subject))
	return fmt.Sprintf("QuestionPaper_%s_%s.docx", subject, now.UTC().Format("200601021504"))
}

// Render writes the paper: header block, separator, then every section with its questions.
func Render(p paper.ExamPaper) ([]byte, error) {
	d := godocx.New().WithDefaultTheme()

	for _, h := range []string{p.SchoolName, p.ExamTitle} {
		if strings.TrimSpace(h) != "" {
			d.AddParagraph().Justification("center").AddText(h).Bold()
		}
	}
	d.AddParagraph()
	d.AddParagraph().AddText(fmt.Sprintf("Class: %s    Subject: %s", p.ClassName, p.Subject))
	d.AddParagraph().AddText(fmt.Sprintf("Max Marks: %d    Duration: %s", p.MaxMarks, p.Duration))
	d.AddParagraph().AddText(strings.Repeat("-", 60))

	for _, s := range p.Sections {
		if strings.TrimSpace(s.Name) != "" {
			d.AddParagraph().AddText(s.Name).Bold()
		}
		if strings.TrimSpace(s.Instructions) != "" {
			d.AddParagraph().AddText(s.Instructions).Italic()
		}
		for _, q := range s.Questions {
			d.AddParagraph().AddText(fmt.Sprintf("Q%d. %s   [%d Marks]", q.Number, q.Text, q.Marks))
		}
		d.AddParagraph()
	}
	d.WithA4Page()

	var out bytes.Buffer
	if _, err := d.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return out.Bytes(), nil
}
