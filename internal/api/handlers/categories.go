package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Jeff0327/adsblog/internal/models"
	"github.com/Jeff0327/adsblog/internal/storage"
)

// ListCategories handles GET /api/tenants/{tenant}/categories.
func ListCategories(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := loadTenant(w, r, store)
		if tenant == nil {
			return
		}

		categories, err := store.ListCategories(r.Context(), tenant.Key)
		if err != nil {
			slog.Error("failed to list categories", "tenant", tenant.Key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list categories")
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

// ListRuns handles GET /api/tenants/{tenant}/runs?limit=, the generation
// audit trail. It is mounted behind the trigger secret.
func ListRuns(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := loadTenant(w, r, store)
		if tenant == nil {
			return
		}

		runs, err := store.RecentRuns(r.Context(), tenant.Key, queryInt(r, "limit", 20, 100))
		if err != nil {
			slog.Error("failed to list runs", "tenant", tenant.Key, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list runs")
			return
		}
		if runs == nil {
			runs = []models.GenerationRun{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}
