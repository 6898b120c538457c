package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jeff0327/adsblog/internal/generator"
)

// DefaultTenant is used when the trigger request names no tenant.
const DefaultTenant = "default"

// Runner runs one generation cycle for a tenant.
type Runner interface {
	Run(ctx context.Context, tenantKey string) (*generator.Result, error)
}

type generateSuccess struct {
	Success bool                   `json:"success"`
	RunID   string                 `json:"run_id"`
	Skipped bool                   `json:"skipped,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Post    *generator.PostSummary `json:"post,omitempty"`
}

type generateFailure struct {
	Success  bool   `json:"success"`
	RunID    string `json:"run_id,omitempty"`
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Provider string `json:"provider,omitempty"`
	Details  string `json:"details,omitempty"`
}

// GeneratePost handles GET and POST /api/cron/generate-post?tenant=<key>.
// Authorization is checked by middleware before this handler runs.
func GeneratePost(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := strings.TrimSpace(r.URL.Query().Get("tenant"))
		if tenant == "" {
			tenant = DefaultTenant
		}

		res, err := runner.Run(r.Context(), tenant)
		if err != nil {
			runErr, ok := generator.AsRunError(err)
			if !ok {
				slog.Error("generation failed", "tenant", tenant, "error", err)
				writeJSON(w, http.StatusInternalServerError, generateFailure{Error: "Internal error"})
				return
			}
			writeJSON(w, statusForKind(runErr.Kind), generateFailure{
				RunID:    runErr.RunID,
				Error:    runErr.Message,
				Kind:     string(runErr.Kind),
				Stage:    string(runErr.Stage),
				Provider: runErr.Provider,
				Details:  runErr.Details,
			})
			return
		}

		if res.Status == generator.StatusSkipped {
			writeJSON(w, http.StatusOK, generateSuccess{
				Success: true,
				RunID:   res.RunID,
				Skipped: true,
				Reason:  res.Reason,
			})
			return
		}

		writeJSON(w, http.StatusOK, generateSuccess{
			Success: true,
			RunID:   res.RunID,
			Post:    res.Post,
		})
	}
}

// statusForKind maps a run failure to an HTTP status.
func statusForKind(kind generator.Kind) int {
	switch {
	case kind == generator.KindConfigNotFound:
		return http.StatusNotFound
	case kind.IsConfiguration():
		return http.StatusUnprocessableEntity
	case kind.IsUpstream():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
