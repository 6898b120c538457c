package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Jeff0327/adsblog/internal/api/handlers"
	"github.com/Jeff0327/adsblog/internal/config"
	"github.com/Jeff0327/adsblog/internal/storage"
)

// NewRouter creates and configures the HTTP router: the secret-gated
// generation trigger and the public read API.
func NewRouter(store *storage.Store, runner handlers.Runner, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireSecret := RequireSecret(cfg.Trigger.Secret)

	r.Route("/api", func(api chi.Router) {
		api.With(requireSecret).Get("/cron/generate-post", handlers.GeneratePost(runner))
		api.With(requireSecret).Post("/cron/generate-post", handlers.GeneratePost(runner))

		api.Route("/tenants/{tenant}", func(t chi.Router) {
			t.Get("/posts", handlers.ListPosts(store))
			t.Get("/posts/recent", handlers.RecentPosts(store))
			t.Get("/posts/{slug}", handlers.GetPost(store))
			t.Get("/categories", handlers.ListCategories(store))
			t.Get("/sitemap.xml", handlers.Sitemap(store, cfg.Server.BaseURL))
			t.With(requireSecret).Get("/runs", handlers.ListRuns(store))
		})
	})

	return r
}
