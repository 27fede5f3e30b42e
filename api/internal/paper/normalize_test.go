package paper

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func sectionNames(t *testing.T, doc map[string]any) []string {
	t.Helper()
	var out []string
	for _, s := range doc[KeySections].([]any) {
		out = append(out, s.(map[string]any)["name"].(string))
	}
	return out
}

func questionNumbers(t *testing.T, sec any) []string {
	t.Helper()
	var out []string
	for _, q := range sec.(map[string]any)["questions"].([]any) {
		switch n := q.(map[string]any)["number"].(type) {
		case json.Number:
			out = append(out, n.String())
		case string:
			out = append(out, n)
		default:
			out = append(out, "?")
		}
	}
	return out
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "Sorry, I cannot read this image."},
		{"truncated object", `{"sections": [`},
		{"empty", ""},
		{"trailing garbage", `{"sections":[{"name":"Q.1"}]} and more`},
		{"fenced broken", "```json\n{\"sections\": [}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Normalize(tt.raw, Defaults{})
			assert.Equal(t, true, errors.Is(err, ErrMalformedResponse))
			assert.Equal(t, false, errors.Is(err, ErrEmptyResult))
			assert.Equal(t, true, doc == nil)
		})
	}
}

func TestNormalize_MalformedSnippetIsTruncated(t *testing.T) {
	raw := "x" + strings.Repeat("y", 1000)
	_, err := Normalize(raw, Defaults{})

	var me *MalformedResponseError
	assert.Equal(t, true, errors.As(err, &me))
	assert.Equal(t, SnippetLen, len(me.Snippet))
	assert.Equal(t, true, strings.HasPrefix(me.Snippet, "xyy"))
	assert.Equal(t, false, strings.Contains(err.Error(), raw))
}

func TestNormalize_EmptyResult(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing sections", `{"schoolName":"X"}`},
		{"empty sections", `{"sections":[]}`},
		{"null sections", `{"sections":null}`},
		{"sections not a list", `{"sections":{"name":"Q.1"}}`},
		{"top level array", `[{"name":"Q.1"}]`},
		{"top level scalar", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, Defaults{})
			assert.Equal(t, true, errors.Is(err, ErrEmptyResult))
			assert.Equal(t, false, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestNormalize_SectionOrder(t *testing.T) {
	raw := `{"sections":[
		{"name":"Q.No.2 Fill in the blanks","questions":[]},
		{"name":"Q.1 Short answers","questions":[]},
		{"name":"Random","questions":[]},
		{"name":"Q.No.10 Essay","questions":[]},
		{"name":"Bonus","questions":[]}
	]}`
	doc, err := Normalize(raw, Defaults{})
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{
		"Q.1 Short answers",
		"Q.No.2 Fill in the blanks",
		"Q.No.10 Essay",
		"Random",
		"Bonus",
	}, sectionNames(t, doc))
}

func TestNormalize_SectionOrderPunctuatedNames(t *testing.T) {
	raw := `{"sections":[
		{"name":"Q:2 Match the following"},
		{"name":"Q-1 Fill in the blanks"},
		{"name":"Q.No.3 Essay"}
	]}`
	doc, err := Normalize(raw, Defaults{})
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{
		"Q-1 Fill in the blanks",
		"Q:2 Match the following",
		"Q.No.3 Essay",
	}, sectionNames(t, doc))
}

func TestNormalize_SectionOrderStableOnTies(t *testing.T) {
	raw := `{"sections":[
		{"name":"Q.2 first"},
		{"name":"Q.1"},
		{"name":"Q.No.2 second"},
		"not an object"
	]}`
	doc, err := Normalize(raw, Defaults{})
	assert.Equal(t, nil, err)

	secs := doc[KeySections].([]any)
	assert.Equal(t, "Q.1", secs[0].(map[string]any)["name"])
	assert.Equal(t, "Q.2 first", secs[1].(map[string]any)["name"])
	assert.Equal(t, "Q.No.2 second", secs[2].(map[string]any)["name"])
	assert.Equal(t, "not an object", secs[3])
}

func TestNormalize_QuestionOrder(t *testing.T) {
	tests := []struct {
		name      string
		questions string
		want      []string
	}{
		{
			name:      "numeric sorted",
			questions: `[{"number":3},{"number":1},{"number":2}]`,
			want:      []string{"1", "2", "3"},
		},
		{
			name:      "numeric strings sorted",
			questions: `[{"number":"2"},{"number":1}]`,
			want:      []string{"1", "2"},
		},
		{
			name:      "non numeric keeps order",
			questions: `[{"number":3},{"number":"two"},{"number":1}]`,
			want:      []string{"3", "two", "1"},
		},
		{
			name:      "missing number keeps order",
			questions: `[{"number":3},{"text":"no number"},{"number":1}]`,
			want:      []string{"3", "?", "1"},
		},
		{
			name:      "integral float sorted",
			questions: `[{"number":2.0},{"number":1}]`,
			want:      []string{"1", "2.0"},
		},
		{
			name:      "non integral keeps order",
			questions: `[{"number":1.9},{"number":1}]`,
			want:      []string{"1.9", "1"},
		},
		{
			name:      "out of range keeps order",
			questions: `[{"number":1e30},{"number":1}]`,
			want:      []string{"1e30", "1"},
		},
		{
			name:      "duplicates stay in original order",
			questions: `[{"number":2,"text":"a"},{"number":1,"text":"b"},{"number":1,"text":"c"}]`,
			want:      []string{"1", "1", "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"sections":[{"name":"Q.1","questions":` + tt.questions + `}]}`
			doc, err := Normalize(raw, Defaults{})
			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, questionNumbers(t, doc[KeySections].([]any)[0]))
		})
	}
}

func TestNormalize_DuplicateNumbersStable(t *testing.T) {
	raw := `{"sections":[{"name":"Q.1","questions":[
		{"number":2,"text":"a"},{"number":1,"text":"b"},{"number":1,"text":"c"}]}]}`
	doc, err := Normalize(raw, Defaults{})
	assert.Equal(t, nil, err)

	qs := doc[KeySections].([]any)[0].(map[string]any)["questions"].([]any)
	assert.Equal(t, "b", qs[0].(map[string]any)["text"])
	assert.Equal(t, "c", qs[1].(map[string]any)["text"])
	assert.Equal(t, "a", qs[2].(map[string]any)["text"])
}

func TestNormalize_BadSectionDoesNotAffectOthers(t *testing.T) {
	raw := `{"sections":[
		{"name":"Q.2","questions":[{"number":2},{"number":"x"},{"number":1}]},
		{"name":"Q.1","questions":[{"number":3},{"number":1},{"number":2}]}
	]}`
	doc, err := Normalize(raw, Defaults{})
	assert.Equal(t, nil, err)

	secs := doc[KeySections].([]any)
	assert.Equal(t, []string{"1", "2", "3"}, questionNumbers(t, secs[0]))
	assert.Equal(t, []string{"2", "x", "1"}, questionNumbers(t, secs[1]))
}

func TestNormalize_Defaults(t *testing.T) {
	d := Defaults{
		SchoolName: "Govt. Sr. Sec. School",
		ExamTitle:  "Half Yearly",
		ClassName:  "8",
		Subject:    "",
		MaxMarks:   80,
		Duration:   "3 hours",
	}
	raw := `{"examTitle":"Annual Exam 2024","sections":[{"name":"Q.1","questions":[]}]}`
	doc, err := Normalize(raw, d)
	assert.Equal(t, nil, err)

	assert.Equal(t, "Govt. Sr. Sec. School", doc[KeySchoolName])
	assert.Equal(t, "Annual Exam 2024", doc[KeyExamTitle])
	assert.Equal(t, "8", doc[KeyClass])
	assert.Equal(t, "3 hours", doc[KeyDuration])
	assert.Equal(t, 80, doc[KeyMaxMarks])

	subject, ok := doc[KeySubject]
	assert.Equal(t, true, ok)
	assert.Equal(t, "", subject)
}

func TestNormalize_KeepsModelValuesAndExtraKeys(t *testing.T) {
	raw := `{"maxMarks":100,"subject":null,"notes":"extra","sections":[{"name":"Q.1"}]}`
	doc, err := Normalize(raw, Defaults{MaxMarks: 50, Subject: "Maths"})
	assert.Equal(t, nil, err)

	assert.Equal(t, json.Number("100"), doc[KeyMaxMarks])
	// present-but-null is not "absent"
	assert.Equal(t, nil, doc[KeySubject])
	assert.Equal(t, "extra", doc["notes"])

	out, err := json.Marshal(doc)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.Contains(string(out), `"maxMarks":100`))
}

func TestNormalize_FencedEndToEnd(t *testing.T) {
	raw := "```json\n" + `{
		"schoolName":"Kendriya Vidyalaya",
		"sections":[
			{"name":"Q.No.2 Translate","instructions":"","questions":[
				{"number":2,"text":"रामः वनं गच्छति","marks":2,"language":"Sanskrit"},
				{"number":1,"text":"बालकः पठति","marks":2,"language":"Sanskrit"}
			]},
			{"name":"Q.No.1 Answer in one word","instructions":"All questions compulsory","questions":[
				{"number":1,"text":"What is the capital of India?","marks":1,"language":"English"}
			]}
		]
	}` + "\n```"
	d := Defaults{SchoolName: "ignored", ExamTitle: "Unit Test", ClassName: "6", Subject: "Sanskrit", MaxMarks: 20, Duration: "1 hour"}

	doc, err := Normalize(raw, d)
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"Q.No.1 Answer in one word", "Q.No.2 Translate"}, sectionNames(t, doc))
	assert.Equal(t, []string{"1", "2"}, questionNumbers(t, doc[KeySections].([]any)[1]))

	p, err := Decode(doc)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Kendriya Vidyalaya", p.SchoolName)
	assert.Equal(t, "Unit Test", p.ExamTitle)
	assert.Equal(t, "6", p.ClassName)
	assert.Equal(t, FlexInt(20), p.MaxMarks)
	assert.Equal(t, 2, len(p.Sections))
	assert.Equal(t, 3, p.QuestionCount())
	assert.Equal(t, LangSanskrit, p.Sections[1].Questions[0].Language)
	assert.Equal(t, "बालकः पठति", p.Sections[1].Questions[0].Text)
}

func TestNormalize_StrippingIsTransparent(t *testing.T) {
	body := `{"sections":[{"name":"Q.2"},{"name":"Q.1"}]}`
	for _, raw := range []string{body, "```\n" + body + "\n```", "```json\n" + body + "\n```"} {
		doc, err := Normalize(raw, Defaults{})
		assert.Equal(t, nil, err)
		assert.Equal(t, []string{"Q.1", "Q.2"}, sectionNames(t, doc))
	}
}
