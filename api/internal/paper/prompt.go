package paper

import (
	"fmt"
	"strings"
)

// ExamPaperShape is the reply shape requested from the model. Normalize validates against it.
const ExamPaperShape = `{
  "schoolName": "string",
  "examTitle": "string",
  "class": "string",
  "subject": "string",
  "maxMarks": number,
  "duration": "string",
  "sections": [
    {
      "name": "string",
      "instructions": "string",
      "questions": [
        {
          "number": number,
          "text": "string",
          "marks": number,
          "language": "Hindi" | "English" | "Sanskrit" | "Mixed"
        }
      ]
    }
  ]
}`

// BuildPrompt формирует инструкцию для модели; дефолты подставляются, чтобы модель могла на них опереться.
func BuildPrompt(d Defaults) string {
	var b strings.Builder
	b.WriteString(`You are helping a school teacher digitize their exam question papers.

You are given one or more images of a handwritten or printed question paper.
The questions can be in Hindi, English, Sanskrit, or a mix.

Your task:
1. Read all the questions and any visible sections/instructions.
2. Group questions into sections by their question number on the paper and name each section
   after it, for example "Q.No.1 Answer the following questions".
3. Number the questions inside each section starting from 1, in the order they appear.
4. Infer marks for each question if they are clearly written, otherwise default to 2.
5. Try to detect the language of each question: "Hindi", "English", "Sanskrit" or "Mixed".
6. Return ONLY valid JSON that matches this schema (no comments, no extra text):

`)
	b.WriteString(ExamPaperShape)
	b.WriteString("\n\nUse these defaults if the information is not present on the paper:\n")
	fmt.Fprintf(&b, "- schoolName: %q\n", d.SchoolName)
	fmt.Fprintf(&b, "- examTitle: %q\n", d.ExamTitle)
	fmt.Fprintf(&b, "- class: %q\n", d.ClassName)
	fmt.Fprintf(&b, "- subject: %q\n", d.Subject)
	fmt.Fprintf(&b, "- maxMarks: %d\n", d.MaxMarks)
	fmt.Fprintf(&b, "- duration: %q\n", d.Duration)
	b.WriteString("\nVery important:\n- Respond with JSON ONLY. No explanation text.\n")
	return b.String()
}
