package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jeff0327/adsblog/internal/models"
)

const tenantColumns = `tenant_key, site_title, site_description, site_url, default_og_image,
	language, content_style, business_name, industry, business_description,
	promotion_goal, target_audience, brand_voice, unique_selling_points, core_values,
	target_keywords, topic_feeds, auto_posting, images_per_post, embed_images,
	ai_provider, ai_api_key, ai_model, ai_content_prompt, ai_seo_prompt,
	ai_temperature, ai_max_tokens, last_posted_at, created_at, updated_at`

// GetTenant returns the configuration row for the given tenant key.
// Returns nil, ErrNotFound if no such tenant exists.
func (s *Store) GetTenant(ctx context.Context, key string) (*models.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE tenant_key = ?`, key)

	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting tenant %q: %w", key, err)
	}
	return tenant, nil
}

// ListSchedulableTenantKeys returns the keys of every tenant whose
// auto-posting flag is not explicitly disabled, ordered by key.
func (s *Store) ListSchedulableTenantKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tenant_key FROM tenants
		 WHERE auto_posting IS NULL OR auto_posting != 0
		 ORDER BY tenant_key`)
	if err != nil {
		return nil, fmt.Errorf("querying schedulable tenants: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning tenant key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenant keys: %w", err)
	}
	return keys, nil
}

// CreateTenant inserts a new tenant configuration row. It fails if the key
// is already taken.
func (s *Store) CreateTenant(ctx context.Context, t *models.Tenant) error {
	return createTenant(ctx, s.db, t)
}

func createTenant(ctx context.Context, q execer, t *models.Tenant) error {
	var autoPosting *int
	if t.AutoPosting != nil {
		v := boolToInt(*t.AutoPosting)
		autoPosting = &v
	}

	language := t.Language
	if language == "" {
		language = "English"
	}
	imagesPerPost := t.ImagesPerPost
	if imagesPerPost <= 0 {
		imagesPerPost = 3
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO tenants (
			tenant_key, site_title, site_description, site_url, default_og_image,
			language, content_style, business_name, industry, business_description,
			promotion_goal, target_audience, brand_voice, unique_selling_points, core_values,
			target_keywords, topic_feeds, auto_posting, images_per_post, embed_images,
			ai_provider, ai_api_key, ai_model, ai_content_prompt, ai_seo_prompt,
			ai_temperature, ai_max_tokens)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Key, t.SiteTitle, nullableString(t.SiteDescription), nullableString(t.SiteURL),
		nullableString(t.DefaultOGImage), language, nullableString(t.ContentStyle),
		nullableString(t.Marketing.BusinessName), nullableString(t.Marketing.Industry),
		nullableString(t.Marketing.BusinessDescription), nullableString(t.Marketing.PromotionGoal),
		nullableString(t.Marketing.TargetAudience), nullableString(t.Marketing.BrandVoice),
		encodeList(t.Marketing.UniqueSellingPoints), encodeList(t.Marketing.CoreValues),
		encodeList(t.TargetKeywords), encodeList(t.TopicFeeds),
		autoPosting, imagesPerPost, boolToInt(t.EmbedImages),
		nullableString(t.AI.Provider), nullableString(t.AI.APIKey), nullableString(t.AI.Model),
		nullableString(t.AI.ContentPrompt), nullableString(t.AI.SEOPrompt),
		t.AI.Temperature, t.AI.MaxTokens,
	)
	if err != nil {
		return fmt.Errorf("creating tenant %q: %w", t.Key, err)
	}
	return nil
}

// UpdateTenantLastPosted records the time of the tenant's latest generated
// post. It returns ErrNotFound if the tenant does not exist.
func (s *Store) UpdateTenantLastPosted(ctx context.Context, key string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET last_posted_at = ?, updated_at = datetime('now')
		 WHERE tenant_key = ?`, formatTime(at), key)
	if err != nil {
		return fmt.Errorf("updating last_posted_at for %q: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected for tenant %q: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTenant(row scanner) (*models.Tenant, error) {
	var (
		t               models.Tenant
		siteDescription sql.NullString
		siteURL         sql.NullString
		defaultOGImage  sql.NullString
		contentStyle    sql.NullString
		businessName    sql.NullString
		industry        sql.NullString
		businessDesc    sql.NullString
		promotionGoal   sql.NullString
		targetAudience  sql.NullString
		brandVoice      sql.NullString
		sellingPoints   sql.NullString
		coreValues      sql.NullString
		targetKeywords  sql.NullString
		topicFeeds      sql.NullString
		autoPosting     sql.NullInt64
		embedImages     int
		aiProvider      sql.NullString
		aiAPIKey        sql.NullString
		aiModel         sql.NullString
		aiContentPrompt sql.NullString
		aiSEOPrompt     sql.NullString
		aiTemperature   sql.NullFloat64
		aiMaxTokens     sql.NullInt64
		lastPostedAt    sql.NullString
		createdAt       string
		updatedAt       string
	)

	if err := row.Scan(
		&t.Key, &t.SiteTitle, &siteDescription, &siteURL, &defaultOGImage,
		&t.Language, &contentStyle, &businessName, &industry, &businessDesc,
		&promotionGoal, &targetAudience, &brandVoice, &sellingPoints, &coreValues,
		&targetKeywords, &topicFeeds, &autoPosting, &t.ImagesPerPost, &embedImages,
		&aiProvider, &aiAPIKey, &aiModel, &aiContentPrompt, &aiSEOPrompt,
		&aiTemperature, &aiMaxTokens, &lastPostedAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	t.SiteDescription = siteDescription.String
	t.SiteURL = siteURL.String
	t.DefaultOGImage = defaultOGImage.String
	t.ContentStyle = contentStyle.String
	t.Marketing = models.Marketing{
		BusinessName:        businessName.String,
		Industry:            industry.String,
		BusinessDescription: businessDesc.String,
		PromotionGoal:       promotionGoal.String,
		TargetAudience:      targetAudience.String,
		BrandVoice:          brandVoice.String,
		UniqueSellingPoints: decodeList(sellingPoints),
		CoreValues:          decodeList(coreValues),
	}
	t.TargetKeywords = decodeList(targetKeywords)
	t.TopicFeeds = decodeList(topicFeeds)
	if autoPosting.Valid {
		v := autoPosting.Int64 != 0
		t.AutoPosting = &v
	}
	t.EmbedImages = embedImages != 0
	t.AI = models.AISettings{
		Provider:      aiProvider.String,
		APIKey:        aiAPIKey.String,
		Model:         aiModel.String,
		ContentPrompt: aiContentPrompt.String,
		SEOPrompt:     aiSEOPrompt.String,
	}
	if aiTemperature.Valid {
		v := aiTemperature.Float64
		t.AI.Temperature = &v
	}
	if aiMaxTokens.Valid {
		v := int(aiMaxTokens.Int64)
		t.AI.MaxTokens = &v
	}
	t.LastPostedAt = parseTimePtr(lastPostedAt)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)

	return &t, nil
}
