package handlers

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jeff0327/adsblog/internal/storage"
)

const maxSitemapPosts = 1000

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap handles GET /api/tenants/{tenant}/sitemap.xml. Post URLs use the
// tenant's site_url, or baseURL when the tenant has none.
func Sitemap(store *storage.Store, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := loadTenant(w, r, store)
		if tenant == nil {
			return
		}

		site := strings.TrimRight(tenant.SiteURL, "/")
		if site == "" {
			site = strings.TrimRight(baseURL, "/")
		}

		posts, err := store.RecentPosts(r.Context(), tenant.Key, maxSitemapPosts)
		if err != nil {
			slog.Error("failed to list posts for sitemap", "tenant", tenant.Key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to build sitemap")
			return
		}

		set := urlSet{
			XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
			URLs:  []sitemapURL{{Loc: site + "/", ChangeFreq: "daily", Priority: "1.0"}},
		}
		for _, p := range posts {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        site + "/post/" + p.Slug,
				LastMod:    p.UpdatedAt.Format("2006-01-02"),
				ChangeFreq: "weekly",
				Priority:   "0.8",
			})
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(xml.Header))
		if err := xml.NewEncoder(w).Encode(set); err != nil {
			slog.Error("failed to encode sitemap", "error", err)
		}
	}
}
