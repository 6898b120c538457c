package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Jeff0327/adsblog/internal/models"
)

// ListKeywords returns the tenant's keywords. With a category ID it returns
// that category's keywords plus the tenant's global ones; with nil it returns
// every keyword of the tenant.
func (s *Store) ListKeywords(ctx context.Context, tenantKey string, categoryID *int64) ([]models.Keyword, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if categoryID != nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, tenant_key, keyword, category_id, is_global, created_at
			 FROM keywords
			 WHERE tenant_key = ? AND (category_id = ? OR is_global = 1)
			 ORDER BY id`, tenantKey, *categoryID)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, tenant_key, keyword, category_id, is_global, created_at
			 FROM keywords WHERE tenant_key = ?
			 ORDER BY id`, tenantKey)
	}
	if err != nil {
		return nil, fmt.Errorf("querying keywords for %q: %w", tenantKey, err)
	}
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var (
			k          models.Keyword
			categoryID sql.NullInt64
			isGlobal   int
			createdAt  string
		)
		if err := rows.Scan(&k.ID, &k.TenantKey, &k.Keyword, &categoryID, &isGlobal, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning keyword row: %w", err)
		}
		if categoryID.Valid {
			v := categoryID.Int64
			k.CategoryID = &v
		}
		k.IsGlobal = isGlobal != 0
		k.CreatedAt = parseTime(createdAt)
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keyword rows: %w", err)
	}
	return keywords, nil
}

// CreateKeyword inserts a keyword unless the same term already exists with
// the same category scope for the tenant.
func (s *Store) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	return createKeyword(ctx, s.db, k)
}

func createKeyword(ctx context.Context, q execer, k *models.Keyword) error {
	term := strings.TrimSpace(k.Keyword)
	if term == "" {
		return fmt.Errorf("keyword cannot be empty")
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO keywords (tenant_key, keyword, category_id, is_global)
		 SELECT ?, ?, ?, ?
		 WHERE NOT EXISTS (
			SELECT 1 FROM keywords
			WHERE tenant_key = ? AND keyword = ? AND category_id IS ?
		 )`,
		k.TenantKey, term, k.CategoryID, boolToInt(k.IsGlobal),
		k.TenantKey, term, k.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("creating keyword %q: %w", term, err)
	}
	return nil
}
