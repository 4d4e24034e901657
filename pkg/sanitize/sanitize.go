// Package sanitize strips markup from model output and user-submitted text
// before it is stored or rendered.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer interface {
	// Text removes every tag and returns plain text. Entities are decoded so
	// quotes and ampersands survive as typed.
	Text(raw string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

func NewTextSanitizer() Sanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
