package ai

// GeneratedContent is the structured record extracted from one provider
// reply. It lives only for the duration of a generation run.
type GeneratedContent struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Excerpt        string   `json:"excerpt"`
	Tags           []string `json:"tags"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
	SEOKeywords    []string `json:"seo_keywords"`
	ImageKeywords  []string `json:"image_keywords,omitempty"`
}

// MarketingContext describes the business a tenant's blog promotes. A context
// without a business name adds no brand guidelines to the prompt.
type MarketingContext struct {
	BusinessName        string
	Industry            string
	BusinessDescription string
	PromotionGoal       string
	ContentStyle        string
	TargetAudience      string
	BrandVoice          string
	UniqueSellingPoints []string
	CoreValues          []string
}

// PromptInput is everything BuildPrompt needs for one post.
type PromptInput struct {
	Topic    string
	Category string
	Keywords []string
	// Language is the language the post is written in. Image keywords are
	// always requested in English.
	Language  string
	Marketing *MarketingContext
	// ImageURLs are pre-fetched photos to embed in the body. When empty the
	// prompt asks for image search keywords instead.
	ImageURLs           []string
	ContentInstructions string
	SEOInstructions     string
}
