package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultTag replaces a missing or empty tag list.
const DefaultTag = "general"

// rawContent mirrors GeneratedContent with pointers so that absent keys can
// be told apart from empty values.
type rawContent struct {
	Title          *string  `json:"title"`
	Content        *string  `json:"content"`
	Excerpt        *string  `json:"excerpt"`
	Tags           []string `json:"tags"`
	SEOTitle       *string  `json:"seo_title"`
	SEODescription *string  `json:"seo_description"`
	SEOKeywords    []string `json:"seo_keywords"`
	ImageKeywords  []string `json:"image_keywords"`
}

// ParseContent extracts the generated record from raw provider text.
//
// Extraction tries a fenced code block first and falls back to brace spans in
// the prose. It fails with UnparsableResponse when no candidate decodes as a
// JSON object, and with IncompleteContent when title or content is empty or
// another required field is absent. Length guidance given to the provider is
// not enforced here.
func ParseContent(raw string) (*GeneratedContent, error) {
	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return nil, &Error{Kind: KindUnparsableResponse, Message: "no JSON object found in response"}
	}

	var (
		rc      rawContent
		lastErr error
		decoded bool
	)
	for _, c := range candidates {
		var attempt rawContent
		if err := json.Unmarshal([]byte(c), &attempt); err != nil {
			lastErr = err
			continue
		}
		rc = attempt
		decoded = true
		break
	}
	if !decoded {
		return nil, &Error{
			Kind:    KindUnparsableResponse,
			Message: fmt.Sprintf("invalid JSON in response: %v", lastErr),
			Err:     lastErr,
		}
	}

	var missing []string
	if rc.Title == nil || strings.TrimSpace(*rc.Title) == "" {
		missing = append(missing, "title")
	}
	if rc.Content == nil || strings.TrimSpace(*rc.Content) == "" {
		missing = append(missing, "content")
	}
	if rc.Excerpt == nil {
		missing = append(missing, "excerpt")
	}
	if rc.SEOTitle == nil {
		missing = append(missing, "seo_title")
	}
	if rc.SEODescription == nil {
		missing = append(missing, "seo_description")
	}
	if rc.SEOKeywords == nil {
		missing = append(missing, "seo_keywords")
	}
	if len(missing) > 0 {
		return nil, &Error{
			Kind:    KindIncompleteContent,
			Message: "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	tags := cleanList(rc.Tags)
	if len(tags) == 0 {
		tags = []string{DefaultTag}
	}

	return &GeneratedContent{
		Title:          strings.TrimSpace(*rc.Title),
		Content:        strings.TrimSpace(*rc.Content),
		Excerpt:        strings.TrimSpace(*rc.Excerpt),
		Tags:           tags,
		SEOTitle:       strings.TrimSpace(*rc.SEOTitle),
		SEODescription: strings.TrimSpace(*rc.SEODescription),
		SEOKeywords:    cleanList(rc.SEOKeywords),
		ImageKeywords:  cleanList(rc.ImageKeywords),
	}, nil
}

// jsonCandidates returns the spans of s that may hold the JSON object, in the
// order they should be tried: fenced blocks, then balanced brace spans, then
// the greedy span from the first '{' to the last '}'. Spans that do not start
// with '{' are dropped, so a fenced null or array never decodes.
func jsonCandidates(s string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		c = strings.TrimSpace(c)
		if !strings.HasPrefix(c, "{") || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	for _, block := range fencedBlocks(s) {
		add(block)
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if end := matchBrace(s, i); end > 0 {
			add(s[i : end+1])
		}
	}

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first >= 0 && last > first {
		add(s[first : last+1])
	}

	return out
}

// fencedBlocks returns the bodies of ```json fences, and of bare ``` fences
// whose body starts with '{'.
func fencedBlocks(s string) []string {
	var blocks []string
	rest := s
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return blocks
		}
		rest = rest[start+3:]

		end := strings.Index(rest, "```")
		if end < 0 {
			return blocks
		}
		body := rest[:end]
		rest = rest[end+3:]

		lang, after, hasNewline := strings.Cut(body, "\n")
		lang = strings.ToLower(strings.TrimSpace(lang))
		switch {
		case lang == "json" && hasNewline:
			blocks = append(blocks, after)
		case strings.HasPrefix(lang, "json") && !hasNewline:
			blocks = append(blocks, strings.TrimPrefix(strings.TrimSpace(body), "json"))
		case strings.HasPrefix(strings.TrimSpace(body), "{"):
			blocks = append(blocks, body)
		}
	}
}

// matchBrace returns the index of the '}' closing the '{' at start, skipping
// braces inside JSON strings. It returns -1 when the span never balances.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// cleanList trims entries and drops empty ones. It never returns nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
