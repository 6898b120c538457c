package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jeff0327/adsblog/internal/models"
	"github.com/Jeff0327/adsblog/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PostListItem is a post without its body, used in listings.
type PostListItem struct {
	ID             int64      `json:"id"`
	CategoryID     *int64     `json:"category_id,omitempty"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Tags           []string   `json:"tags"`
	OGImage        *string    `json:"og_image"`
	ReadingMinutes int        `json:"reading_minutes"`
	ViewCount      int64      `json:"view_count"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PostListResponse is one page of posts.
type PostListResponse struct {
	Posts []PostListItem `json:"posts"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// PostDetailResponse is a full post with its gallery and neighbours.
type PostDetailResponse struct {
	Post   *models.Post       `json:"post"`
	Images []models.PostImage `json:"images"`
	Prev   *models.PostLink   `json:"prev"`
	Next   *models.PostLink   `json:"next"`
}

func toListItems(posts []models.Post) []PostListItem {
	items := make([]PostListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, PostListItem{
			ID:             p.ID,
			CategoryID:     p.CategoryID,
			Title:          p.Title,
			Slug:           p.Slug,
			Excerpt:        p.Excerpt,
			Tags:           p.Tags,
			OGImage:        p.OGImage,
			ReadingMinutes: p.ReadingMinutes,
			ViewCount:      p.ViewCount,
			PublishedAt:    p.PublishedAt,
			CreatedAt:      p.CreatedAt,
		})
	}
	return items
}

// ListPosts handles GET /api/tenants/{tenant}/posts?page=&limit=.
func ListPosts(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := loadTenant(w, r, store)
		if tenant == nil {
			return
		}

		page := queryInt(r, "page", 1, 1<<20)
		limit := queryInt(r, "limit", defaultPageSize, maxPageSize)

		posts, total, err := store.ListPosts(r.Context(), tenant.Key, limit, (page-1)*limit)
		if err != nil {
			slog.Error("failed to list posts", "tenant", tenant.Key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list posts")
			return
		}

		writeJSON(w, http.StatusOK, PostListResponse{
			Posts: toListItems(posts),
			Total: total,
			Page:  page,
			Limit: limit,
		})
	}
}

// RecentPosts handles GET /api/tenants/{tenant}/posts/recent?limit=.
func RecentPosts(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := loadTenant(w, r, store)
		if tenant == nil {
			return
		}

		posts, err := store.RecentPosts(r.Context(), tenant.Key, queryInt(r, "limit", 5, maxPageSize))
		if err != nil {
			slog.Error("failed to list recent posts", "tenant", tenant.Key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list posts")
			return
		}
		writeJSON(w, http.StatusOK, toListItems(posts))
	}
}

// GetPost handles GET /api/tenants/{tenant}/posts/{slug}. Every call counts
// as one view.
func GetPost(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenant := loadTenant(w, r, store)
		if tenant == nil {
			return
		}

		post, err := store.ReadPost(ctx, tenant.Key, chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Post not found")
				return
			}
			slog.Error("failed to read post", "tenant", tenant.Key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load post")
			return
		}

		images, err := store.ListPostImages(ctx, post.ID)
		if err != nil {
			slog.Warn("failed to load post images", "post_id", post.ID, "error", err)
		}
		if images == nil {
			images = []models.PostImage{}
		}

		prev, next, err := store.AdjacentPosts(ctx, post)
		if err != nil {
			slog.Warn("failed to load adjacent posts", "post_id", post.ID, "error", err)
		}

		writeJSON(w, http.StatusOK, PostDetailResponse{
			Post:   post,
			Images: images,
			Prev:   prev,
			Next:   next,
		})
	}
}
