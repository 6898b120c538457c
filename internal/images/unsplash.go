// Package images finds stock photos for generated posts.
//
// Search never fails: every provider error is logged and degrades to an
// empty result, since a post without images is an acceptable outcome.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	unsplashAPIURL     = "https://api.unsplash.com"
	defaultTimeout     = 30 * time.Second
	maxTrackingWorkers = 4
)

// URLs holds the resolution-specific URLs of a photo.
type URLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// Author is the photographer credited for a photo.
type Author struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Image is a single search result.
type Image struct {
	ID             string `json:"id"`
	URLs           URLs   `json:"urls"`
	AltDescription string `json:"alt_description,omitempty"`
	Author         Author `json:"user"`
}

// Searcher finds up to count landscape photos for the given keywords. It
// never returns an error; failures yield an empty slice.
type Searcher interface {
	Search(ctx context.Context, keywords []string, count int) []Image
}

// Config configures the Unsplash client.
type Config struct {
	AccessKey string
	BaseURL   string
	Timeout   time.Duration
}

// Unsplash implements Searcher with the Unsplash search API. Each returned
// photo triggers one download-tracking request as the API terms require.
type Unsplash struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

// Compile-time interface check.
var _ Searcher = (*Unsplash)(nil)

// NewUnsplash creates an Unsplash client.
func NewUnsplash(cfg Config) *Unsplash {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = unsplashAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Unsplash{
		accessKey: cfg.AccessKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Results []struct {
		Image
		Links struct {
			DownloadLocation string `json:"download_location"`
		} `json:"links"`
	} `json:"results"`
}

// Search joins keywords with spaces and asks for one page of count landscape
// photos.
func (u *Unsplash) Search(ctx context.Context, keywords []string, count int) []Image {
	images := []Image{}
	if count <= 0 {
		return images
	}

	query := buildQuery(keywords)
	if query == "" {
		return images
	}
	if u.accessKey == "" {
		slog.Warn("image search skipped: no Unsplash access key configured", "query", query)
		return images
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", "landscape")

	var resp searchResponse
	if err := u.getJSON(ctx, u.baseURL+"/search/photos?"+params.Encode(), &resp); err != nil {
		slog.Warn("image search failed", "query", query, "error", err)
		return images
	}

	var locations []string
	for _, r := range resp.Results {
		if len(images) == count {
			break
		}
		images = append(images, r.Image)
		locations = append(locations, r.Links.DownloadLocation)
	}

	u.trackDownloads(ctx, locations)

	slog.Info("image search completed", "query", query, "results", len(images))
	return images
}

// trackDownloads pings each download location once. Failures are logged and
// never affect the result set.
func (u *Unsplash) trackDownloads(ctx context.Context, locations []string) {
	var g errgroup.Group
	g.SetLimit(maxTrackingWorkers)

	for _, loc := range locations {
		if loc == "" {
			continue
		}
		g.Go(func() error {
			if err := u.getJSON(ctx, loc, nil); err != nil {
				slog.Warn("download tracking failed", "location", loc, "error", err)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors
}

// getJSON performs an authenticated GET and decodes the body into out when
// out is non-nil.
func (u *Unsplash) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func buildQuery(keywords []string) string {
	var parts []string
	for _, kw := range keywords {
		if s := strings.TrimSpace(kw); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
