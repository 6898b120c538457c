package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Jeff0327/adsblog/internal/models"
	"github.com/Jeff0327/adsblog/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied and
// one tenant "acme" created. It registers a cleanup function to close the
// database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	store := storage.NewStore(db)
	if err := store.CreateTenant(context.Background(), &models.Tenant{
		Key:       "acme",
		SiteTitle: "Acme Coffee",
		SiteURL:   "https://acme.example.com",
	}); err != nil {
		t.Fatalf("creating tenant: %v", err)
	}
	return store
}

func insertPost(t *testing.T, store *storage.Store, slug string) *models.Post {
	t.Helper()

	post, err := store.InsertPost(context.Background(), &models.Post{
		TenantKey: "acme",
		Title:     "Post " + slug,
		Slug:      slug,
		Content:   "<p>body of " + slug + "</p>",
		Tags:      []string{"coffee"},
		Published: true,
	})
	if err != nil {
		t.Fatalf("inserting post %q: %v", slug, err)
	}
	return post
}

// serve routes a request through a chi router with the given pattern so URL
// parameters are populated.
func serve(method, pattern, target string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}
