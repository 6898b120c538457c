package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Jeff0327/adsblog/internal/models"
)

// ListCategories returns the tenant's categories ordered by order_index.
func (s *Store) ListCategories(ctx context.Context, tenantKey string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_key, name, slug, description, order_index, created_at
		 FROM categories WHERE tenant_key = ?
		 ORDER BY order_index ASC, id ASC`, tenantKey)
	if err != nil {
		return nil, fmt.Errorf("querying categories for %q: %w", tenantKey, err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var (
			c           models.Category
			description sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&c.ID, &c.TenantKey, &c.Name, &c.Slug, &description,
			&c.OrderIndex, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		c.Description = description.String
		c.CreatedAt = parseTime(createdAt)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a category unless one with the same slug already
// exists for the tenant, and returns the row ID either way.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) (int64, error) {
	return createCategory(ctx, s.db, c)
}

func createCategory(ctx context.Context, q execer, c *models.Category) (int64, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (tenant_key, name, slug, description, order_index)
		 VALUES (?, ?, ?, ?, ?)`,
		c.TenantKey, c.Name, c.Slug, nullableString(c.Description), c.OrderIndex,
	); err != nil {
		return 0, fmt.Errorf("creating category %q: %w", c.Slug, err)
	}

	var id int64
	if err := q.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE tenant_key = ? AND slug = ?`,
		c.TenantKey, c.Slug,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("getting category id for %q: %w", c.Slug, err)
	}
	return id, nil
}
