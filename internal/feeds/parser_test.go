package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestHeadlinesFromFeed(t *testing.T) {
	now := time.Now()
	recent := now.Add(-12 * time.Hour)
	old := now.Add(-60 * 24 * time.Hour)
	cutoff := now.Add(-7 * 24 * time.Hour)

	tests := []struct {
		name  string
		items []*gofeed.Item
		want  []string
	}{
		{
			name:  "recent item is kept",
			items: []*gofeed.Item{{Title: "Cold brew is back", PublishedParsed: &recent}},
			want:  []string{"Cold brew is back"},
		},
		{
			name:  "old item is dropped",
			items: []*gofeed.Item{{Title: "Last year's news", PublishedParsed: &old}},
			want:  nil,
		},
		{
			name:  "undated item is kept",
			items: []*gofeed.Item{{Title: "Undated"}},
			want:  []string{"Undated"},
		},
		{
			name:  "markup and entities are stripped",
			items: []*gofeed.Item{{Title: "<b>Tea</b> &amp; biscuits"}},
			want:  []string{"Tea & biscuits"},
		},
		{
			name: "empty and overlong titles are skipped",
			items: []*gofeed.Item{
				{Title: "  "},
				{Title: strings.Repeat("x", maxHeadlineLength+1)},
				{Title: "Fine"},
			},
			want: []string{"Fine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := headlinesFromFeed(&gofeed.Feed{Items: tt.items}, cutoff)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("headlinesFromFeed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeHeadlines(t *testing.T) {
	perFeed := [][]string{
		{"Alpha", "Beta"},
		nil,
		{"beta", "Gamma", "Delta"},
	}

	got := mergeHeadlines(perFeed, 10)
	if strings.Join(got, ",") != "Alpha,Beta,Gamma,Delta" {
		t.Errorf("mergeHeadlines() = %v", got)
	}

	got = mergeHeadlines(perFeed, 2)
	if strings.Join(got, ",") != "Alpha,Beta" {
		t.Errorf("mergeHeadlines(limit 2) = %v", got)
	}
}
