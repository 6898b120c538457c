package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Jeff0327/adsblog/internal/models"
)

// InsertPostImages writes the gallery rows of a post inside a single
// transaction. The slice position becomes the row's order_index, so indices
// are contiguous from zero. An empty slice is a no-op.
func (s *Store) InsertPostImages(ctx context.Context, postID int64, images []models.PostImage) error {
	if len(images) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO post_images (post_id, image_url, alt_text, order_index)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, img := range images {
		if _, err := stmt.ExecContext(ctx, postID, img.ImageURL, nullableString(img.AltText), i); err != nil {
			return fmt.Errorf("inserting image %d of post %d: %w", i, postID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListPostImages returns the gallery rows of a post in display order.
func (s *Store) ListPostImages(ctx context.Context, postID int64) ([]models.PostImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, image_url, alt_text, order_index, created_at
		 FROM post_images WHERE post_id = ?
		 ORDER BY order_index ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying images of post %d: %w", postID, err)
	}
	defer rows.Close()

	var images []models.PostImage
	for rows.Next() {
		var (
			img       models.PostImage
			altText   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&img.ID, &img.PostID, &img.ImageURL, &altText, &img.OrderIndex, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning image row: %w", err)
		}
		img.AltText = altText.String
		img.CreatedAt = parseTime(createdAt)
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating image rows: %w", err)
	}
	return images, nil
}
