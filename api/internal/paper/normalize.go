package paper

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"question-builder/api/internal/util"
)

// Top-level metadata keys as requested from the model.
const (
	KeySchoolName = "schoolName"
	KeyExamTitle  = "examTitle"
	KeyClass      = "class"
	KeySubject    = "subject"
	KeyMaxMarks   = "maxMarks"
	KeyDuration   = "duration"
	KeySections   = "sections"
)

// Normalize turns the raw model reply into the client document: fences are stripped,
// the JSON is parsed, sections and questions are put in order and missing metadata
// is filled from d. Unknown keys the model adds are kept as they are.
func Normalize(raw string, d Defaults) (map[string]any, error) {
	clean := util.StripCodeFences(raw)

	doc, err := parseJSON(clean)
	if err != nil {
		return nil, &MalformedResponseError{Snippet: util.Truncate(clean, SnippetLen), Err: err}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrEmptyResult
	}
	sections, ok := obj[KeySections].([]any)
	if !ok || len(sections) == 0 {
		return nil, ErrEmptyResult
	}

	sortSections(sections)
	for _, s := range sections {
		if sec, ok := s.(map[string]any); ok {
			sortQuestions(sec)
		}
	}

	setDefault(obj, KeySchoolName, d.SchoolName)
	setDefault(obj, KeyExamTitle, d.ExamTitle)
	setDefault(obj, KeyClass, d.ClassName)
	setDefault(obj, KeySubject, d.Subject)
	setDefault(obj, KeyMaxMarks, d.MaxMarks)
	setDefault(obj, KeyDuration, d.Duration)

	return obj, nil
}

// parseJSON decodes exactly one JSON value; numbers stay json.Number so that
// integers survive the round trip untouched.
func parseJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty response")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func setDefault(obj map[string]any, key string, v any) {
	if _, ok := obj[key]; !ok {
		obj[key] = v
	}
}

func sortSections(sections []any) {
	keys := make([]int, len(sections))
	for i, s := range sections {
		name := ""
		if sec, ok := s.(map[string]any); ok {
			name, _ = sec["name"].(string)
		}
		keys[i] = sectionSortKey(name)
	}
	idx := make([]int, len(sections))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })

	ordered := make([]any, len(sections))
	for i, j := range idx {
		ordered[i] = sections[j]
	}
	copy(sections, ordered)
}

// sortQuestions orders one section's questions by number. If any number is missing
// or not an integer the section is left exactly as received.
func sortQuestions(sec map[string]any) {
	qs, ok := sec["questions"].([]any)
	if !ok || len(qs) < 2 {
		return
	}
	keys := make([]int, len(qs))
	for i, q := range qs {
		qm, ok := q.(map[string]any)
		if !ok {
			return
		}
		n, ok := questionNumber(qm["number"])
		if !ok {
			return
		}
		keys[i] = n
	}

	idx := make([]int, len(qs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })

	ordered := make([]any, len(qs))
	for i, j := range idx {
		ordered[i] = qs[j]
	}
	sec["questions"] = ordered
}

// maxExactFloat bounds floats that still compare exactly once converted.
const maxExactFloat = 1 << 53

// questionNumber accepts only integral values; anything else leaves the section order alone.
func questionNumber(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			if int64(int(i)) != i {
				return 0, false
			}
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return integralFloat(f)
		}
	case float64:
		return integralFloat(n)
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func integralFloat(f float64) (int, bool) {
	if math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return 0, false
	}
	return int(f), true
}

// Decode converts a normalized document into the typed paper.
func Decode(doc map[string]any) (ExamPaper, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return ExamPaper{}, err
	}
	var p ExamPaper
	if err := json.Unmarshal(buf.Bytes(), &p); err != nil {
		return ExamPaper{}, err
	}
	return p, nil
}
