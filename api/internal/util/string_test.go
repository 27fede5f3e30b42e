package util

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"sections":[]}`,
			want:  `{"sections":[]}`,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"sections\":[]}\n```",
			want:  `{"sections":[]}`,
		},
		{
			name:  "strips upper-case tag",
			input: "```JSON\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "strips plain fenced block",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "tag glued to the object",
			input: "```json{\"a\":1}```",
			want:  `{"a":1}`,
		},
		{
			name:  "fence without tag on one line",
			input: "```[1,2]```",
			want:  `[1,2]`,
		},
		{
			name:  "trims surrounding whitespace",
			input: "  \n```json\n{\"a\":1}\n```\n  ",
			want:  `{"a":1}`,
		},
		{
			name:  "no opening fence keeps text",
			input: "not json",
			want:  "not json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripCodeFences(tt.input)
			assert.Equal(t, tt.want, got)
			// second pass is a no-op
			assert.Equal(t, got, StripCodeFences(got))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 300))
	assert.Equal(t, "", Truncate("ab", 0))
	// counts runes, not bytes
	assert.Equal(t, "प्र", Truncate("प्रश्न", 3))
}
