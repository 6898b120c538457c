package ai

import (
	"errors"
	"strings"
	"testing"
)

const completeJSON = `{"title":"5 Coffee Tips","content":"<h2>Brew</h2><p>Use {fresh} beans.</p>","excerpt":"Better coffee",` +
	`"tags":["coffee","tips"],"seo_title":"Coffee tips","seo_description":"How to brew","seo_keywords":["coffee","brew"],` +
	`"image_keywords":["coffee","cafe"]}`

func TestParseContent(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantTags  []string
	}{
		{
			name:      "plain object",
			raw:       completeJSON,
			wantTitle: "5 Coffee Tips",
			wantTags:  []string{"coffee", "tips"},
		},
		{
			name:      "json fence with prose",
			raw:       "Here is your post:\n```json\n" + completeJSON + "\n```\nEnjoy!",
			wantTitle: "5 Coffee Tips",
			wantTags:  []string{"coffee", "tips"},
		},
		{
			name:      "bare fence",
			raw:       "```\n" + completeJSON + "\n```",
			wantTitle: "5 Coffee Tips",
			wantTags:  []string{"coffee", "tips"},
		},
		{
			name:      "prose with braces before the object",
			raw:       "Template {placeholder} follows. " + completeJSON + " Done.",
			wantTitle: "5 Coffee Tips",
			wantTags:  []string{"coffee", "tips"},
		},
		{
			name: "missing tags get default",
			raw: `{"title":"T","content":"<p>c</p>","excerpt":"e","seo_title":"s","seo_description":"d",` +
				`"seo_keywords":["k"]}`,
			wantTitle: "T",
			wantTags:  []string{DefaultTag},
		},
		{
			name: "empty tags get default",
			raw: "```json\n" + `{"title":"T","content":"<p>c</p>","excerpt":"e","tags":[" ",""],"seo_title":"s",` +
				`"seo_description":"d","seo_keywords":[]}` + "\n```",
			wantTitle: "T",
			wantTags:  []string{DefaultTag},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContent(tt.raw)
			if err != nil {
				t.Fatalf("ParseContent() error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if strings.Join(got.Tags, ",") != strings.Join(tt.wantTags, ",") {
				t.Errorf("Tags = %v, want %v", got.Tags, tt.wantTags)
			}
		})
	}
}

func TestParseContent_Fields(t *testing.T) {
	got, err := ParseContent(completeJSON)
	if err != nil {
		t.Fatalf("ParseContent() error: %v", err)
	}
	if got.Content != "<h2>Brew</h2><p>Use {fresh} beans.</p>" {
		t.Errorf("Content = %q", got.Content)
	}
	if got.SEOTitle != "Coffee tips" || got.SEODescription != "How to brew" || got.Excerpt != "Better coffee" {
		t.Errorf("SEO fields = %+v", got)
	}
	if len(got.SEOKeywords) != 2 || len(got.ImageKeywords) != 2 || got.ImageKeywords[1] != "cafe" {
		t.Errorf("keywords = %v / %v", got.SEOKeywords, got.ImageKeywords)
	}
}

func TestParseContent_LengthsNotEnforced(t *testing.T) {
	long := strings.Repeat("x", 300)
	raw := `{"title":"` + long + `","content":"c","excerpt":"` + long + `","seo_title":"s","seo_description":"` + long + `","seo_keywords":["k"]}`

	got, err := ParseContent(raw)
	if err != nil {
		t.Fatalf("ParseContent() error: %v", err)
	}
	if len(got.Title) != 300 {
		t.Errorf("title was altered: %d chars", len(got.Title))
	}
}

func TestParseContent_Unparsable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I could not write that post, sorry."},
		{"unbalanced", "result: {\"title\": \"x\""},
		{"invalid json", "```json\n{title: 'x'}\n```"},
		{"array only", `["a","b"]`},
		{"fenced null", "```json\nnull\n```"},
		{"fenced array", "```json\n[\"a\"]\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContent(tt.raw)
			if got != nil {
				t.Errorf("ParseContent() returned a record: %+v", got)
			}
			var aiErr *Error
			if !errors.As(err, &aiErr) || aiErr.Kind != KindUnparsableResponse {
				t.Errorf("ParseContent() error = %v, want UnparsableResponse", err)
			}
		})
	}
}

func TestParseContent_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty title",
			raw:  `{"title":"  ","content":"c","excerpt":"e","seo_title":"s","seo_description":"d","seo_keywords":[]}`,
			want: "title",
		},
		{
			name: "missing content",
			raw:  `{"title":"t","excerpt":"e","seo_title":"s","seo_description":"d","seo_keywords":[]}`,
			want: "content",
		},
		{
			name: "missing seo fields",
			raw:  `{"title":"t","content":"c","excerpt":"e"}`,
			want: "seo_title, seo_description, seo_keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContent(tt.raw)
			var aiErr *Error
			if !errors.As(err, &aiErr) || aiErr.Kind != KindIncompleteContent {
				t.Fatalf("ParseContent() error = %v, want IncompleteContent", err)
			}
			if !strings.Contains(aiErr.Message, tt.want) {
				t.Errorf("Message = %q, want mention of %q", aiErr.Message, tt.want)
			}
		})
	}
}

func TestMatchBrace(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{`{}`, 1},
		{`{"a":{"b":1}} tail`, 12},
		{`{"a":"}"}`, 8},
		{`{"a":"\"}"}`, 10},
		{`{"a":1`, -1},
	}
	for _, tt := range tests {
		if got := matchBrace(tt.s, 0); got != tt.want {
			t.Errorf("matchBrace(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}
