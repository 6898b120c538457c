package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Jeff0327/adsblog/internal/models"
	"github.com/Jeff0327/adsblog/internal/storage"
)

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; only logging is possible.
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// queryInt reads a positive integer query parameter. Missing or invalid
// values yield def; values above max are clamped.
func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return min(n, max)
}

// loadTenant resolves the {tenant} URL parameter. It writes a 404 or 500
// response and returns nil when the tenant cannot be loaded.
func loadTenant(w http.ResponseWriter, r *http.Request, store *storage.Store) *models.Tenant {
	key := chi.URLParam(r, "tenant")
	tenant, err := store.GetTenant(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Tenant not found")
			return nil
		}
		slog.Error("failed to load tenant", "tenant", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load tenant")
		return nil
	}
	return tenant
}
