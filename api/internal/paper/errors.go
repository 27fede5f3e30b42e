package paper

import (
	"errors"
	"fmt"
)

// SnippetLen bounds how much of a bad model reply ends up in an error.
const SnippetLen = 300

var (
	// ErrNoContent: no usable image was uploaded.
	ErrNoContent = errors.New("no image content")
	// ErrMalformedResponse: the model reply is not valid JSON.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrEmptyResult: valid JSON without any sections.
	ErrEmptyResult = errors.New("model returned no sections/questions")
)

// MalformedResponseError keeps the head of the offending text for diagnosis.
type MalformedResponseError struct {
	Snippet string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse JSON from model response: %v; raw_text=%s", e.Err, e.Snippet)
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

func (e *MalformedResponseError) Unwrap() error { return e.Err }
