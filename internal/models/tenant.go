package models

import "time"

// Tenant is the configuration row of one logical blog, keyed by TenantKey.
type Tenant struct {
	Key             string `json:"tenant_key"`
	SiteTitle       string `json:"site_title"`
	SiteDescription string `json:"site_description,omitempty"`
	SiteURL         string `json:"site_url,omitempty"`
	DefaultOGImage  string `json:"default_og_image,omitempty"`
	Language        string `json:"language"`
	ContentStyle    string `json:"content_style,omitempty"`

	Marketing Marketing `json:"marketing"`

	TargetKeywords []string `json:"target_keywords,omitempty"`
	TopicFeeds     []string `json:"topic_feeds,omitempty"`

	// AutoPosting is nil when the flag was never set. Only an explicit false
	// disables scheduled generation.
	AutoPosting   *bool `json:"auto_posting,omitempty"`
	ImagesPerPost int   `json:"images_per_post"`
	EmbedImages   bool  `json:"embed_images"`

	AI AISettings `json:"ai"`

	LastPostedAt *time.Time `json:"last_posted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AutoPostingDisabled reports whether auto-posting was explicitly turned off.
func (t *Tenant) AutoPostingDisabled() bool {
	return t.AutoPosting != nil && !*t.AutoPosting
}

// Marketing holds the brand descriptors used to steer generated content.
type Marketing struct {
	BusinessName        string   `json:"business_name,omitempty"`
	Industry            string   `json:"industry,omitempty"`
	BusinessDescription string   `json:"business_description,omitempty"`
	PromotionGoal       string   `json:"promotion_goal,omitempty"`
	TargetAudience      string   `json:"target_audience,omitempty"`
	BrandVoice          string   `json:"brand_voice,omitempty"`
	UniqueSellingPoints []string `json:"unique_selling_points,omitempty"`
	CoreValues          []string `json:"core_values,omitempty"`
}

// AISettings are the per-tenant text-generation provider settings. Empty
// fields fall back to process-wide defaults.
type AISettings struct {
	Provider      string   `json:"provider,omitempty"`
	APIKey        string   `json:"-"`
	Model         string   `json:"model,omitempty"`
	ContentPrompt string   `json:"content_prompt,omitempty"`
	SEOPrompt     string   `json:"seo_prompt,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	MaxTokens     *int     `json:"max_tokens,omitempty"`
}

// Category belongs to a tenant and is used to diversify topics.
type Category struct {
	ID          int64     `json:"id"`
	TenantKey   string    `json:"tenant_key"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// Keyword is an SEO term attached to a tenant, optionally scoped to one
// category. Global keywords apply to every category of the tenant.
type Keyword struct {
	ID         int64     `json:"id"`
	TenantKey  string    `json:"tenant_key"`
	Keyword    string    `json:"keyword"`
	CategoryID *int64    `json:"category_id,omitempty"`
	IsGlobal   bool      `json:"is_global"`
	CreatedAt  time.Time `json:"created_at"`
}
