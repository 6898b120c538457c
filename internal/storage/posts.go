package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff0327/adsblog/internal/models"
)

const postColumns = `id, tenant_key, category_id, title, slug, content, excerpt, tags, images,
	seo_title, seo_description, seo_keywords, og_image, reading_minutes, published,
	published_at, view_count, created_at, updated_at`

// InsertPost writes a new post and returns it with its assigned ID and
// timestamps. The result is built from p, so once the INSERT succeeds the
// call succeeds. A slug collision within the tenant is reported as
// ErrSlugTaken; callers resolve uniqueness first.
func (s *Store) InsertPost(ctx context.Context, p *models.Post) (*models.Post, error) {
	saved := *p
	saved.ViewCount = 0
	saved.CreatedAt = time.Now().UTC().Truncate(time.Second)
	saved.UpdatedAt = saved.CreatedAt
	saved.Tags = orEmpty(p.Tags)
	saved.Images = orEmpty(p.Images)
	saved.SEOKeywords = orEmpty(p.SEOKeywords)

	var publishedAt *string
	if p.PublishedAt != nil {
		at := p.PublishedAt.UTC().Truncate(time.Second)
		saved.PublishedAt = &at
		v := formatTime(at)
		publishedAt = &v
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (tenant_key, category_id, title, slug, content, excerpt, tags, images,
			seo_title, seo_description, seo_keywords, og_image, reading_minutes, published, published_at,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TenantKey, p.CategoryID, p.Title, p.Slug, p.Content, nullableString(p.Excerpt),
		encodeList(p.Tags), encodeList(p.Images), nullableString(p.SEOTitle),
		nullableString(p.SEODescription), encodeList(p.SEOKeywords), p.OGImage,
		p.ReadingMinutes, boolToInt(p.Published), publishedAt,
		formatTime(saved.CreatedAt), formatTime(saved.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("inserting post %q: %w", p.Slug, ErrSlugTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting post %q: %w", p.Slug, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting post id: %w", err)
	}
	saved.ID = id
	return &saved, nil
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// FindPostBySlug looks a post up without touching its view counter. It is the
// existence probe used for slug uniqueness.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) FindPostBySlug(ctx context.Context, tenantKey, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE tenant_key = ? AND slug = ?`,
		tenantKey, slug)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding post %q: %w", slug, err)
	}
	return post, nil
}

// ReadPost returns a published post and increments its view counter exactly
// once. The returned ViewCount includes this read.
// Returns nil, ErrNotFound if no matching published row exists.
func (s *Store) ReadPost(ctx context.Context, tenantKey, slug string) (*models.Post, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1
		 WHERE tenant_key = ? AND slug = ? AND published = 1`, tenantKey, slug)
	if err != nil {
		return nil, fmt.Errorf("incrementing views of %q: %w", slug, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected for post %q: %w", slug, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	return s.FindPostBySlug(ctx, tenantKey, slug)
}

// ListPosts returns one page of the tenant's published posts, newest first,
// together with the total number of published posts.
func (s *Store) ListPosts(ctx context.Context, tenantKey string, limit, offset int) ([]models.Post, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE tenant_key = ? AND published = 1`, tenantKey,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting posts for %q: %w", tenantKey, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE tenant_key = ? AND published = 1
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`, tenantKey, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying posts for %q: %w", tenantKey, err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// RecentPosts returns the tenant's newest published posts.
func (s *Store) RecentPosts(ctx context.Context, tenantKey string, limit int) ([]models.Post, error) {
	posts, _, err := s.ListPosts(ctx, tenantKey, limit, 0)
	return posts, err
}

// AdjacentPosts returns the published posts immediately older (prev) and
// newer (next) than the given post. Either may be nil.
func (s *Store) AdjacentPosts(ctx context.Context, p *models.Post) (prev, next *models.PostLink, err error) {
	prev, err = s.adjacentPost(ctx,
		`SELECT id, title, slug FROM posts
		 WHERE tenant_key = ? AND published = 1 AND id < ?
		 ORDER BY id DESC LIMIT 1`, p.TenantKey, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying previous post: %w", err)
	}

	next, err = s.adjacentPost(ctx,
		`SELECT id, title, slug FROM posts
		 WHERE tenant_key = ? AND published = 1 AND id > ?
		 ORDER BY id ASC LIMIT 1`, p.TenantKey, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying next post: %w", err)
	}
	return prev, next, nil
}

func (s *Store) adjacentPost(ctx context.Context, query string, args ...any) (*models.PostLink, error) {
	var link models.PostLink
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&link.ID, &link.Title, &link.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}
	return posts, nil
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p              models.Post
		categoryID     sql.NullInt64
		excerpt        sql.NullString
		tags           sql.NullString
		images         sql.NullString
		seoTitle       sql.NullString
		seoDescription sql.NullString
		seoKeywords    sql.NullString
		ogImage        sql.NullString
		published      int
		publishedAt    sql.NullString
		createdAt      string
		updatedAt      string
	)

	if err := row.Scan(
		&p.ID, &p.TenantKey, &categoryID, &p.Title, &p.Slug, &p.Content, &excerpt,
		&tags, &images, &seoTitle, &seoDescription, &seoKeywords, &ogImage,
		&p.ReadingMinutes, &published, &publishedAt, &p.ViewCount, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if categoryID.Valid {
		v := categoryID.Int64
		p.CategoryID = &v
	}
	p.Excerpt = excerpt.String
	p.Tags = decodeList(tags)
	p.Images = decodeList(images)
	p.SEOTitle = seoTitle.String
	p.SEODescription = seoDescription.String
	p.SEOKeywords = decodeList(seoKeywords)
	if ogImage.Valid {
		v := ogImage.String
		p.OGImage = &v
	}
	p.Published = published != 0
	p.PublishedAt = parseTimePtr(publishedAt)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	return &p, nil
}
