// Package feeds turns RSS and Atom feeds into trending headlines that seed
// topic selection when a tenant has no keywords of its own.
package feeds

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	httpTimeout     = 30 * time.Second
	maxConcurrent   = 4
	rateLimitDelay  = 1 * time.Second
	defaultLookback = 7 * 24 * time.Hour
)

// Fetcher retrieves feeds with per-domain rate limiting and bounded
// concurrency.
type Fetcher struct {
	client      *http.Client
	lookback    time.Duration
	now         func() time.Time
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher with a 30-second HTTP timeout and the adsblog
// user agent. Items older than a week are ignored.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: httpTimeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		lookback:    defaultLookback,
		now:         time.Now,
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", "adsblog-trends/1.0 (+https://github.com/Jeff0327/adsblog)")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	return t.base.RoundTrip(req)
}

// Headlines fetches every feed concurrently and returns up to limit distinct
// recent item titles, in feed order. Feeds that fail are logged and skipped;
// Headlines never returns an error.
func (f *Fetcher) Headlines(ctx context.Context, feedURLs []string, limit int) []string {
	if len(feedURLs) == 0 || limit <= 0 {
		return nil
	}

	perFeed := make([][]string, len(feedURLs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, feedURL := range feedURLs {
		g.Go(func() error {
			titles, err := f.fetchSingleFeed(ctx, feedURL)
			if err != nil {
				slog.Warn("failed to fetch trend feed", "url", feedURL, "error", err)
				return nil // skip failures, don't fail the batch
			}
			perFeed[i] = titles
			slog.Debug("fetched trend feed", "url", feedURL, "items", len(titles))
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	return mergeHeadlines(perFeed, limit)
}

// fetchSingleFeed retrieves one feed and extracts its recent titles.
func (f *Fetcher) fetchSingleFeed(ctx context.Context, feedURL string) ([]string, error) {
	f.waitForRateLimit(extractDomain(feedURL))

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}
	return headlinesFromFeed(feed, f.now().Add(-f.lookback)), nil
}

// waitForRateLimit enforces a minimum delay of 1 second between requests to
// the same domain. It blocks until the delay has elapsed.
func (f *Fetcher) waitForRateLimit(domain string) {
	f.mu.Lock()
	lastReq, ok := f.rateLimiter[domain]
	if ok {
		elapsed := time.Since(lastReq)
		if elapsed < rateLimitDelay {
			f.mu.Unlock()
			time.Sleep(rateLimitDelay - elapsed)
			f.mu.Lock()
		}
	}
	f.rateLimiter[domain] = time.Now()
	f.mu.Unlock()
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
