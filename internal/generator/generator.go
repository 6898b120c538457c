// Package generator runs one content generation cycle for a tenant: topic
// selection, text generation, image lookup, slug assignment and persistence.
//
// A run never retries. Provider, parsing and post-insert failures end the
// run with a *RunError; image search, gallery rows, the last-posted update
// and the audit row are best effort and only logged.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jeff0327/adsblog/internal/ai"
	"github.com/Jeff0327/adsblog/internal/content"
	"github.com/Jeff0327/adsblog/internal/images"
	"github.com/Jeff0327/adsblog/internal/models"
	"github.com/Jeff0327/adsblog/internal/permalink"
	"github.com/Jeff0327/adsblog/internal/storage"
)

// Store is the subset of the backing store a run reads and writes.
type Store interface {
	GetTenant(ctx context.Context, key string) (*models.Tenant, error)
	ListCategories(ctx context.Context, tenantKey string) ([]models.Category, error)
	ListKeywords(ctx context.Context, tenantKey string, categoryID *int64) ([]models.Keyword, error)
	FindPostBySlug(ctx context.Context, tenantKey, slug string) (*models.Post, error)
	InsertPost(ctx context.Context, p *models.Post) (*models.Post, error)
	InsertPostImages(ctx context.Context, postID int64, imgs []models.PostImage) error
	UpdateTenantLastPosted(ctx context.Context, key string, at time.Time) error
	RecordRun(ctx context.Context, run *models.GenerationRun) (int64, error)
}

// TrendSource supplies headline keywords from a tenant's topic feeds.
type TrendSource interface {
	Headlines(ctx context.Context, feedURLs []string, limit int) []string
}

// ProviderFactory creates a text-generation provider for a resolved
// configuration.
type ProviderFactory func(cfg ai.ProviderConfig) (ai.Provider, error)

// DefaultKeywords is the pool used when a tenant has no keywords at all.
var DefaultKeywords = []string{"blog", "article", "content"}

// excerptLength bounds the excerpt derived from the body when the provider
// returns an empty one.
const excerptLength = 160

// Options configures a Generator. Zero values select defaults.
type Options struct {
	Credentials     ai.Credentials
	DefaultProvider string
	Slugs           *permalink.Generator
	DefaultKeywords []string
	// RequestTimeout bounds every outbound call of a run.
	RequestTimeout time.Duration
	// BaseURL builds canonical URLs for tenants without a site URL.
	BaseURL     string
	Compactor   *content.Compactor
	NewProvider ProviderFactory
	Trends      TrendSource
	Now         func() time.Time
	Intn        func(n int) int
}

// Status is the outcome of a successful run.
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
)

// Result summarizes a successful run. Post is nil when the run was skipped.
type Result struct {
	RunID  string       `json:"run_id"`
	Status Status       `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Post   *PostSummary `json:"post,omitempty"`
}

// PostSummary describes the post a run created.
type PostSummary struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
	ImagesCount int      `json:"images_count"`
	URL         string   `json:"url"`
	OGImage     *string  `json:"og_image"`
}

// Generator orchestrates generation runs. It is safe for concurrent use;
// runs share nothing but the store.
type Generator struct {
	store           Store
	images          images.Searcher
	trends          TrendSource
	creds           ai.Credentials
	defaultProvider string
	slugs           *permalink.Generator
	defaultKeywords []string
	timeout         time.Duration
	baseURL         string
	compactor       *content.Compactor
	newProvider     ProviderFactory
	now             func() time.Time
	intn            func(n int) int
}

// New creates a Generator.
func New(store Store, searcher images.Searcher, opts Options) *Generator {
	g := &Generator{
		store:           store,
		images:          searcher,
		trends:          opts.Trends,
		creds:           opts.Credentials,
		defaultProvider: opts.DefaultProvider,
		slugs:           opts.Slugs,
		defaultKeywords: opts.DefaultKeywords,
		timeout:         opts.RequestTimeout,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		compactor:       opts.Compactor,
		newProvider:     opts.NewProvider,
		now:             opts.Now,
		intn:            opts.Intn,
	}
	if g.defaultProvider == "" {
		g.defaultProvider = string(ai.ProviderGemini)
	}
	if g.slugs == nil {
		g.slugs = permalink.New(permalink.StrategyTimestamp)
	}
	if len(g.defaultKeywords) == 0 {
		g.defaultKeywords = DefaultKeywords
	}
	if g.timeout <= 0 {
		g.timeout = ai.DefaultTimeout
	}
	if g.newProvider == nil {
		g.newProvider = ai.NewProvider
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.intn == nil {
		g.intn = rand.IntN
	}
	return g
}

// Run executes one generation cycle for the tenant. A tenant whose
// auto-posting is explicitly disabled yields a skipped Result and no writes.
// Failures are returned as *RunError.
func (g *Generator) Run(ctx context.Context, tenantKey string) (*Result, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID, "tenant", tenantKey)
	started := g.now()

	// 1. Load tenant configuration.
	tenant, err := g.store.GetTenant(ctx, tenantKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("tenant not configured")
			return nil, &RunError{
				RunID:   runID,
				Kind:    KindConfigNotFound,
				Stage:   StageConfig,
				Message: fmt.Sprintf("no configuration for tenant %q", tenantKey),
				Err:     err,
			}
		}
		log.Error("failed to load tenant", "error", err)
		return nil, &RunError{
			RunID:   runID,
			Kind:    KindStoreFailure,
			Stage:   StageConfig,
			Message: "failed to load tenant configuration",
			Err:     err,
		}
	}

	// 2. Auto-posting gate.
	if tenant.AutoPostingDisabled() {
		log.Info("auto-posting disabled, skipping run")
		return &Result{RunID: runID, Status: StatusSkipped, Reason: "auto-posting is disabled"}, nil
	}

	audit := &models.GenerationRun{RunID: runID, TenantKey: tenant.Key, StartedAt: started}

	// 3. Resolve the provider before any outbound call.
	providerCfg, err := ai.Resolve(tenant.AI, g.creds, g.defaultProvider)
	if err != nil {
		return nil, g.fail(ctx, log, audit, fromAI(StageConfig, "", err))
	}
	providerCfg.Timeout = g.timeout
	audit.Provider = string(providerCfg.Name)
	audit.Model = providerCfg.Model

	provider, err := g.newProvider(providerCfg)
	if err != nil {
		return nil, g.fail(ctx, log, audit, fromAI(StageConfig, providerCfg.Name, err))
	}

	// 4. Topic selection.
	choice, err := g.selectTopic(ctx, tenant)
	if err != nil {
		return nil, g.fail(ctx, log, audit, &RunError{
			Kind:    KindStoreFailure,
			Stage:   StageTopic,
			Message: "failed to assemble keyword pool",
			Err:     err,
		})
	}
	audit.Topic = choice.Topic
	log.Info("topic selected", "topic", choice.Topic, "keyword", choice.Keyword, "provider", providerCfg.Name)

	// 5. Pre-fetch images when the tenant embeds them into the body.
	var photos []images.Image
	if tenant.EmbedImages {
		photos = g.searchImages(ctx, choice.imageKeywords(), tenant.ImagesPerPost)
	}

	// 6. Generate and parse.
	prompt := ai.BuildPrompt(g.promptInput(tenant, choice, photos))

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	raw, err := provider.Generate(genCtx, prompt, providerCfg.Params())
	cancel()
	if err != nil {
		return nil, g.fail(ctx, log, audit, fromAI(StageGenerate, providerCfg.Name, err))
	}

	generated, err := ai.ParseContent(raw)
	if err != nil {
		return nil, g.fail(ctx, log, audit, fromAI(StageParse, providerCfg.Name, err))
	}

	// 7. Images for the gallery when they were not pre-fetched.
	if !tenant.EmbedImages {
		keywords := generated.ImageKeywords
		if len(keywords) == 0 {
			keywords = []string{choice.Keyword}
		}
		photos = g.searchImages(ctx, keywords, tenant.ImagesPerPost)
	}

	body := generated.Content
	if g.compactor != nil {
		if compacted, err := g.compactor.Compact(body); err != nil {
			log.Warn("failed to compact generated body", "error", err)
		} else {
			body = compacted
		}
	}

	// 8. Slug.
	slug, err := g.slugs.Generate(ctx, generated.Title, g.slugExists(tenant.Key))
	if err != nil {
		return nil, g.fail(ctx, log, audit, &RunError{
			Kind:    KindStoreFailure,
			Stage:   StageSlug,
			Message: "failed to assign slug",
			Err:     err,
		})
	}

	// 9. Persist.
	now := g.now()
	imageURLs := make([]string, 0, len(photos))
	for _, p := range photos {
		imageURLs = append(imageURLs, p.URLs.Regular)
	}
	var ogImage *string
	if len(imageURLs) > 0 {
		ogImage = &imageURLs[0]
	}

	excerpt := generated.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = content.Excerpt(body, excerptLength)
	}

	post := &models.Post{
		TenantKey:      tenant.Key,
		Title:          generated.Title,
		Slug:           slug,
		Content:        body,
		Excerpt:        excerpt,
		Tags:           generated.Tags,
		Images:         imageURLs,
		SEOTitle:       generated.SEOTitle,
		SEODescription: generated.SEODescription,
		SEOKeywords:    generated.SEOKeywords,
		OGImage:        ogImage,
		ReadingMinutes: content.ReadingMinutes(body),
		Published:      true,
		PublishedAt:    &now,
	}
	if choice.Category != nil {
		post.CategoryID = &choice.Category.ID
	}

	saved, err := g.store.InsertPost(ctx, post)
	if err != nil {
		msg := "failed to save post"
		if errors.Is(err, storage.ErrSlugTaken) {
			msg = fmt.Sprintf("slug %q was taken before the post was saved", slug)
		}
		return nil, g.fail(ctx, log, audit, &RunError{
			Kind:    KindPersistenceFailure,
			Stage:   StagePersist,
			Message: msg,
			Err:     err,
		})
	}
	log.Info("post created", "post_id", saved.ID, "slug", saved.Slug, "images", len(photos))

	if len(photos) > 0 {
		rows := make([]models.PostImage, len(photos))
		for i, p := range photos {
			alt := p.AltDescription
			if alt == "" {
				alt = generated.Title
			}
			rows[i] = models.PostImage{ImageURL: p.URLs.Regular, AltText: alt}
		}
		if err := g.store.InsertPostImages(ctx, saved.ID, rows); err != nil {
			log.Warn("failed to save post images", "post_id", saved.ID, "error", err)
		}
	}

	// 10. Done.
	if err := g.store.UpdateTenantLastPosted(ctx, tenant.Key, now); err != nil {
		log.Warn("failed to update last posted time", "error", err)
	}

	audit.Status = string(StatusCreated)
	audit.PostID = &saved.ID
	g.record(ctx, log, audit)

	summary := &PostSummary{
		ID:          saved.ID,
		Title:       saved.Title,
		Slug:        saved.Slug,
		Tags:        saved.Tags,
		ImagesCount: len(saved.Images),
		URL:         g.canonicalURL(tenant, saved.Slug),
		OGImage:     saved.OGImage,
	}
	if choice.Category != nil {
		summary.Category = choice.Category.Name
	}
	return &Result{RunID: runID, Status: StatusCreated, Post: summary}, nil
}

// searchImages runs an image search bounded by the request timeout.
func (g *Generator) searchImages(ctx context.Context, keywords []string, count int) []images.Image {
	if g.images == nil || count <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.images.Search(ctx, keywords, count)
}

func (g *Generator) promptInput(tenant *models.Tenant, choice *topicChoice, photos []images.Image) ai.PromptInput {
	in := ai.PromptInput{
		Topic:               choice.Topic,
		Keywords:            choice.Pool,
		Language:            tenant.Language,
		ContentInstructions: tenant.AI.ContentPrompt,
		SEOInstructions:     tenant.AI.SEOPrompt,
	}
	if choice.Category != nil {
		in.Category = choice.Category.Name
	}
	for _, p := range photos {
		in.ImageURLs = append(in.ImageURLs, p.URLs.Regular)
	}

	m := tenant.Marketing
	if strings.TrimSpace(m.BusinessName) != "" {
		in.Marketing = &ai.MarketingContext{
			BusinessName:        m.BusinessName,
			Industry:            m.Industry,
			BusinessDescription: m.BusinessDescription,
			PromotionGoal:       m.PromotionGoal,
			ContentStyle:        tenant.ContentStyle,
			TargetAudience:      m.TargetAudience,
			BrandVoice:          m.BrandVoice,
			UniqueSellingPoints: m.UniqueSellingPoints,
			CoreValues:          m.CoreValues,
		}
	}
	return in
}

// slugExists probes the store for a slug within one tenant.
func (g *Generator) slugExists(tenantKey string) permalink.ExistsFunc {
	return func(ctx context.Context, slug string) (bool, error) {
		_, err := g.store.FindPostBySlug(ctx, tenantKey, slug)
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
}

// canonicalURL is the public address of a post.
func (g *Generator) canonicalURL(tenant *models.Tenant, slug string) string {
	base := strings.TrimRight(tenant.SiteURL, "/")
	if base == "" {
		base = g.baseURL
	}
	return base + "/post/" + slug
}

// fail logs a failed run, writes its audit row and returns the error.
func (g *Generator) fail(ctx context.Context, log *slog.Logger, audit *models.GenerationRun, runErr *RunError) *RunError {
	runErr.RunID = audit.RunID
	if runErr.Provider == "" {
		runErr.Provider = audit.Provider
	}
	log.Error("generation run failed",
		"kind", runErr.Kind,
		"stage", runErr.Stage,
		"provider", runErr.Provider,
		"error", runErr.Err,
	)

	audit.Status = "failed"
	audit.ErrorKind = string(runErr.Kind)
	audit.Stage = string(runErr.Stage)
	audit.Message = runErr.Message
	g.record(ctx, log, audit)
	return runErr
}

// record writes the audit row. Cancellation of the run does not prevent it.
func (g *Generator) record(ctx context.Context, log *slog.Logger, audit *models.GenerationRun) {
	finished := g.now()
	audit.FinishedAt = &finished
	if _, err := g.store.RecordRun(context.WithoutCancel(ctx), audit); err != nil {
		log.Warn("failed to record generation run", "error", err)
	}
}
