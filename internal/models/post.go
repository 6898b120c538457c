package models

import "time"

// Post is a published article of one tenant. Slug is unique per tenant.
type Post struct {
	ID             int64      `json:"id"`
	TenantKey      string     `json:"tenant_key"`
	CategoryID     *int64     `json:"category_id,omitempty"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Tags           []string   `json:"tags"`
	Images         []string   `json:"images"`
	SEOTitle       string     `json:"seo_title,omitempty"`
	SEODescription string     `json:"seo_description,omitempty"`
	SEOKeywords    []string   `json:"seo_keywords"`
	OGImage        *string    `json:"og_image"`
	ReadingMinutes int        `json:"reading_minutes"`
	Published      bool       `json:"published"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	ViewCount      int64      `json:"view_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PostImage is a gallery row of a post. OrderIndex values are contiguous
// from zero and ascending order is display order.
type PostImage struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	ImageURL   string    `json:"image_url"`
	AltText    string    `json:"alt_text,omitempty"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostLink is the minimal projection used for prev/next navigation.
type PostLink struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// GenerationRun records the outcome of one generation cycle for auditing.
type GenerationRun struct {
	ID         int64      `json:"id"`
	RunID      string     `json:"run_id"`
	TenantKey  string     `json:"tenant_key"`
	Status     string     `json:"status"`
	ErrorKind  string     `json:"error_kind,omitempty"`
	Stage      string     `json:"stage,omitempty"`
	Provider   string     `json:"provider,omitempty"`
	Model      string     `json:"model,omitempty"`
	Topic      string     `json:"topic,omitempty"`
	PostID     *int64     `json:"post_id,omitempty"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
