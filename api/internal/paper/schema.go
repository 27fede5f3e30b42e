package paper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// examPaperSchema validates papers posted back by the client for document generation.
// Numbers may come as strings; FlexInt handles both.
const examPaperSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "schoolName": {"type": ["string", "null"]},
    "examTitle":  {"type": ["string", "null"]},
    "class":      {"type": ["string", "null"]},
    "subject":    {"type": ["string", "null"]},
    "maxMarks":   {"type": ["integer", "string", "null"]},
    "duration":   {"type": ["string", "null"]},
    "sections": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "name":         {"type": ["string", "null"]},
          "instructions": {"type": ["string", "null"]},
          "questions": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "number":   {"type": ["integer", "string"]},
                "text":     {"type": ["string", "null"]},
                "marks":    {"type": ["integer", "string", "null"]},
                "language": {"type": ["string", "null"]}
              },
              "required": ["number", "text"]
            }
          }
        },
        "required": ["questions"]
      }
    }
  },
  "required": ["sections"]
}`

var examPaperSchemaLoader = gojsonschema.NewStringLoader(examPaperSchema)

// ParseExamPaperJSON validates body against the paper schema and decodes it.
func ParseExamPaperJSON(body []byte) (ExamPaper, error) {
	res, err := gojsonschema.Validate(examPaperSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return ExamPaper{}, fmt.Errorf("invalid exam paper: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return ExamPaper{}, fmt.Errorf("invalid exam paper: %s", strings.Join(msgs, "; "))
	}
	var p ExamPaper
	if err := json.Unmarshal(body, &p); err != nil {
		return ExamPaper{}, fmt.Errorf("invalid exam paper: %w", err)
	}
	return p, nil
}
