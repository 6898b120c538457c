package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Jeff0327/adsblog/internal/models"
)

func TestListPosts(t *testing.T) {
	store := newTestStore(t)
	for _, slug := range []string{"one", "two", "three"} {
		insertPost(t, store, slug)
	}

	w := serve(http.MethodGet, "/tenants/{tenant}/posts", "/tenants/acme/posts?page=1&limit=2", ListPosts(store))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var got PostListResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Total != 3 || got.Page != 1 || got.Limit != 2 {
		t.Errorf("paging = %+v", got)
	}
	if len(got.Posts) != 2 || got.Posts[0].Slug != "three" {
		t.Errorf("posts = %+v, want newest first", got.Posts)
	}
}

func TestListPosts_UnknownTenant(t *testing.T) {
	store := newTestStore(t)

	w := serve(http.MethodGet, "/tenants/{tenant}/posts", "/tenants/nobody/posts", ListPosts(store))
	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetPost(t *testing.T) {
	store := newTestStore(t)
	first := insertPost(t, store, "first")
	insertPost(t, store, "second")
	third := insertPost(t, store, "third")

	if err := store.InsertPostImages(context.Background(), first.ID, []models.PostImage{
		{ImageURL: "https://img.example.com/a.jpg", AltText: "a"},
		{ImageURL: "https://img.example.com/b.jpg", AltText: "b"},
	}); err != nil {
		t.Fatalf("inserting images: %v", err)
	}

	handler := GetPost(store)
	for want := int64(1); want <= 2; want++ {
		w := serve(http.MethodGet, "/tenants/{tenant}/posts/{slug}", "/tenants/acme/posts/first", handler)
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
		}

		var got PostDetailResponse
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if got.Post.ViewCount != want {
			t.Errorf("ViewCount = %d, want %d", got.Post.ViewCount, want)
		}
		if len(got.Images) != 2 || got.Images[0].ImageURL != "https://img.example.com/a.jpg" {
			t.Errorf("images = %+v", got.Images)
		}
		if got.Prev != nil {
			t.Errorf("Prev = %+v, want nil for the oldest post", got.Prev)
		}
		if got.Next == nil || got.Next.Slug != "second" {
			t.Errorf("Next = %+v, want second", got.Next)
		}
	}

	w := serve(http.MethodGet, "/tenants/{tenant}/posts/{slug}", "/tenants/acme/posts/third", handler)
	var got PostDetailResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Post.ID != third.ID || got.Next != nil || got.Prev == nil {
		t.Errorf("neighbours of newest post = %+v / %+v", got.Prev, got.Next)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	store := newTestStore(t)

	w := serve(http.MethodGet, "/tenants/{tenant}/posts/{slug}", "/tenants/acme/posts/missing", GetPost(store))
	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRecentPostsAndCategories(t *testing.T) {
	store := newTestStore(t)
	insertPost(t, store, "only")
	if _, err := store.CreateCategory(context.Background(), &models.Category{TenantKey: "acme", Name: "Brewing", Slug: "brewing"}); err != nil {
		t.Fatalf("creating category: %v", err)
	}

	w := serve(http.MethodGet, "/tenants/{tenant}/posts/recent", "/tenants/acme/posts/recent?limit=3", RecentPosts(store))
	var posts []PostListItem
	if err := json.NewDecoder(w.Body).Decode(&posts); err != nil {
		t.Fatalf("decoding posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "only" {
		t.Errorf("recent posts = %+v", posts)
	}

	w = serve(http.MethodGet, "/tenants/{tenant}/categories", "/tenants/acme/categories", ListCategories(store))
	var categories []models.Category
	if err := json.NewDecoder(w.Body).Decode(&categories); err != nil {
		t.Fatalf("decoding categories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Brewing" {
		t.Errorf("categories = %+v", categories)
	}
}

func TestListRuns_Empty(t *testing.T) {
	store := newTestStore(t)

	w := serve(http.MethodGet, "/tenants/{tenant}/runs", "/tenants/acme/runs", ListRuns(store))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestSitemap(t *testing.T) {
	store := newTestStore(t)
	insertPost(t, store, "brew-guide")

	w := serve(http.MethodGet, "/tenants/{tenant}/sitemap.xml", "/tenants/acme/sitemap.xml", Sitemap(store, "http://localhost:8080"))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">",
		"<loc>https://acme.example.com/</loc>",
		"<loc>https://acme.example.com/post/brew-guide</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q:\n%s", want, body)
		}
	}
}
