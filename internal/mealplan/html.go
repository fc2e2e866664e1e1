package mealplan

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// AllowedElements is the fixed vocabulary that survives sanitizing.
var AllowedElements = []string{"h2", "h3", "p", "ul", "li", "strong"}

var (
	htmlRenderer = goldmark.New()
	policy       = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedElements...)
	return p
}

// Sanitize strips everything outside AllowedElements, including attributes.
// Script and style contents are removed, other tags are unwrapped.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}

// RenderHTML turns a raw reply into a display-safe HTML fragment.
func RenderHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if IsRejection(trimmed) {
		return Sanitize("<p>" + html.EscapeString(trimmed) + "</p>")
	}

	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(raw), &buf); err != nil {
		return Sanitize("<p>" + html.EscapeString(trimmed) + "</p>")
	}
	return Sanitize(buf.String())
}
