// Package security provides input hardening for user-supplied text.
//
// TextSanitizer strips markup from free-text profile fields (names) that
// arrive from identity providers or from PATCH bodies, so stored values
// never carry HTML into clients that render them.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer removes markup from plain-text fields.
type TextSanitizer interface {
	// Sanitize returns s without any HTML elements, unescaped back to
	// plain text and trimmed of surrounding whitespace.
	// The same input always yields the same output.
	Sanitize(s string) string
}

// textSanitizer is the bluemonday-backed TextSanitizer. Safe for concurrent use.
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer returns a TextSanitizer using bluemonday's strict policy,
// which allows no elements at all. script and style contents are dropped.
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses bounds re-sanitizing of entity-encoded markup such as "&lt;b&gt;".
const maxPasses = 3

// Sanitize strips tags. bluemonday escapes the text it keeps, so the result is
// unescaped again: names like O'Brien must round-trip unchanged. Unescaping can
// surface new markup, hence the repeated passes until the value is stable.
func (s *textSanitizer) Sanitize(in string) string {
	out := in
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			break
		}
		out = next
	}
	return out
}
