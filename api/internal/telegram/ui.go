package telegram

import (
	"fmt"
	"strings"

	"question-builder/api/internal/paper"
)

// captionLimit is Telegram's maximum document caption length.
const captionLimit = 1024

// paperCaption summarises an extraction next to the sent document.
func paperCaption(p paper.ExamPaper, pages int) string {
	var b strings.Builder
	if t := strings.TrimSpace(p.ExamTitle); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	if p.Subject != "" || p.ClassName != "" {
		fmt.Fprintf(&b, "Class %s, %s\n", orDash(p.ClassName), orDash(p.Subject))
	}
	fmt.Fprintf(&b, "%d pages, %d sections, %d questions", pages, len(p.Sections), p.QuestionCount())
	for _, s := range p.Sections {
		line := fmt.Sprintf("\n- %s (%d)", strings.TrimSpace(s.Name), len(s.Questions))
		if b.Len()+len(line) > captionLimit-1 {
			b.WriteString("\n…")
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
