package util

import (
	"regexp"
	"strings"
)

// fenceLangRe matches the info string right after an opening fence ("json", "JSON", "json5"...).
// The tag must be followed by whitespace, the end of text, or the start of a JSON value.
var fenceLangRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+-]*(\s|$|[\[{])`)

// StripCodeFences removes a ``` wrapper (with optional language tag) that models
// like to put around JSON. Text without an opening fence is only trimmed.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimLeft(s, "`")
	if m := fenceLangRe.FindStringSubmatchIndex(s); m != nil {
		// keep the delimiter that ended the tag
		s = s[m[2]:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "`")
	return strings.TrimSpace(s)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
