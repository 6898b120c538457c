package feeds

import (
	"strings"
	"time"

	"github.com/Jeff0327/adsblog/internal/content"
	"github.com/mmcdole/gofeed"
)

// maxHeadlineLength drops titles too long to serve as a topic keyword.
const maxHeadlineLength = 120

// headlinesFromFeed returns the plain-text titles of items published after
// cutoff. Items without a publication date are kept.
func headlinesFromFeed(feed *gofeed.Feed, cutoff time.Time) []string {
	var titles []string
	for _, item := range feed.Items {
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}

		title := content.Text(item.Title)
		if title == "" || len([]rune(title)) > maxHeadlineLength {
			continue
		}
		titles = append(titles, title)
	}
	return titles
}

// mergeHeadlines flattens per-feed titles in order, dropping case-insensitive
// duplicates, and stops at limit.
func mergeHeadlines(perFeed [][]string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, titles := range perFeed {
		for _, title := range titles {
			key := strings.ToLower(title)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, title)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
