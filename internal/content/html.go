// Package content holds helpers for generated HTML bodies: compaction,
// plain-text extraction and reading-time estimates.
package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

var (
	htmlTagPattern    = regexp.MustCompile("<[^>]*>")
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Compactor minifies generated HTML before it is stored.
type Compactor struct {
	m *minify.M
}

// NewCompactor creates a Compactor for HTML fragments. Optional closing tags
// and document structure are kept because bodies are embedded into pages.
func NewCompactor() *Compactor {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &Compactor{m: m}
}

// Compact returns the minified body. On failure the original body is
// returned together with the error.
func (c *Compactor) Compact(body string) (string, error) {
	out, err := c.m.String("text/html", body)
	if err != nil {
		return body, fmt.Errorf("minifying html: %w", err)
	}
	return out, nil
}

// Text strips tags from an HTML fragment, unescapes entities and collapses
// whitespace. Tags become spaces so adjacent blocks do not run together.
func Text(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, " ")
	clean = html.UnescapeString(clean)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(clean, " "))
}

// Excerpt returns the first limit runes of the body's text, cut at a word
// boundary when possible.
func Excerpt(body string, limit int) string {
	text := []rune(Text(body))
	if len(text) <= limit {
		return string(text)
	}
	cut := string(text[:limit])
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}
