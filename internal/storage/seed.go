package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jeff0327/adsblog/internal/models"
)

// CategorySeed describes a category and the keywords scoped to it.
type CategorySeed struct {
	Name        string
	Slug        string
	Description string
	Keywords    []string
}

// TenantSeed is the initial content of one tenant: its configuration row,
// its categories and its global keywords.
type TenantSeed struct {
	Tenant         models.Tenant
	Categories     []CategorySeed
	GlobalKeywords []string
}

// SeedTenant creates the tenant described by seed if no tenant with that key
// exists yet. Existing tenants are left untouched so operator edits made in
// the database survive restarts. The tenant row, its categories and its
// keywords are written in one transaction, so a failed seed leaves nothing
// behind. It reports whether anything was written.
func (s *Store) SeedTenant(ctx context.Context, seed TenantSeed) (bool, error) {
	key := seed.Tenant.Key
	if key == "" {
		return false, fmt.Errorf("seeding tenant: key is required")
	}

	_, err := s.GetTenant(ctx, key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := createTenant(ctx, tx, &seed.Tenant); err != nil {
		return false, err
	}

	for i, cs := range seed.Categories {
		catID, err := createCategory(ctx, tx, &models.Category{
			TenantKey:   key,
			Name:        cs.Name,
			Slug:        cs.Slug,
			Description: cs.Description,
			OrderIndex:  i,
		})
		if err != nil {
			return false, fmt.Errorf("seeding category %q of %q: %w", cs.Slug, key, err)
		}
		for _, kw := range cs.Keywords {
			if err := createKeyword(ctx, tx, &models.Keyword{
				TenantKey:  key,
				Keyword:    kw,
				CategoryID: &catID,
			}); err != nil {
				return false, fmt.Errorf("seeding keyword of %q: %w", key, err)
			}
		}
	}

	for _, kw := range seed.GlobalKeywords {
		if err := createKeyword(ctx, tx, &models.Keyword{
			TenantKey: key,
			Keyword:   kw,
			IsGlobal:  true,
		}); err != nil {
			return false, fmt.Errorf("seeding global keyword of %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed of %q: %w", key, err)
	}

	slog.Info("seeded tenant", "tenant", key,
		"categories", len(seed.Categories), "global_keywords", len(seed.GlobalKeywords))
	return true, nil
}
