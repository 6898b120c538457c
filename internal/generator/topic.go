package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jeff0327/adsblog/internal/models"
)

// maxTrendHeadlines caps how many feed headlines join the keyword pool.
const maxTrendHeadlines = 20

// maxImageQueryTerms caps the pool terms sent as one image search query.
const maxImageQueryTerms = 3

// topicChoice is the outcome of topic selection for one run.
type topicChoice struct {
	Topic    string
	Keyword  string
	Category *models.Category
	Pool     []string
}

// selectTopic picks an optional category uniformly, assembles the keyword
// pool and draws one keyword from it.
//
// The pool is the category's keywords plus global keywords plus the tenant's
// target keywords. When that is empty, trend headlines from the tenant's
// topic feeds are used, and after that the configured default pool.
func (g *Generator) selectTopic(ctx context.Context, tenant *models.Tenant) (*topicChoice, error) {
	categories, err := g.store.ListCategories(ctx, tenant.Key)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	var category *models.Category
	var categoryID *int64
	if len(categories) > 0 {
		c := categories[g.intn(len(categories))]
		category = &c
		categoryID = &c.ID
	}

	keywords, err := g.store.ListKeywords(ctx, tenant.Key, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing keywords: %w", err)
	}

	terms := make([]string, 0, len(keywords)+len(tenant.TargetKeywords))
	for _, k := range keywords {
		terms = append(terms, k.Keyword)
	}
	terms = append(terms, tenant.TargetKeywords...)
	pool := dedupe(terms)

	if len(pool) == 0 && len(tenant.TopicFeeds) > 0 && g.trends != nil {
		pool = dedupe(g.trends.Headlines(ctx, tenant.TopicFeeds, maxTrendHeadlines))
	}
	if len(pool) == 0 {
		pool = dedupe(g.defaultKeywords)
	}
	if len(pool) == 0 {
		pool = []string{"blog"}
	}

	keyword := pool[g.intn(len(pool))]
	return &topicChoice{
		Topic:    composeTopic(keyword, category, tenant.Marketing),
		Keyword:  keyword,
		Category: category,
		Pool:     pool,
	}, nil
}

// imageKeywords returns the keyword pool for an image search with the drawn
// keyword first, capped at maxImageQueryTerms terms.
func (c *topicChoice) imageKeywords() []string {
	out := []string{c.Keyword}
	for _, kw := range c.Pool {
		if len(out) >= maxImageQueryTerms {
			break
		}
		if !strings.EqualFold(kw, c.Keyword) {
			out = append(out, kw)
		}
	}
	return out
}

// composeTopic builds the topic string. Target audience takes priority over
// industry; with neither the keyword stands alone.
func composeTopic(keyword string, category *models.Category, m models.Marketing) string {
	var topic string
	switch {
	case strings.TrimSpace(m.TargetAudience) != "":
		topic = fmt.Sprintf("%s for %s", keyword, strings.TrimSpace(m.TargetAudience))
	case strings.TrimSpace(m.Industry) != "":
		topic = fmt.Sprintf("%s in the %s industry", keyword, strings.TrimSpace(m.Industry))
	default:
		topic = keyword
	}
	if category != nil {
		topic = category.Name + " - " + topic
	}
	return topic
}

// dedupe trims terms and drops blanks and case-insensitive repeats, keeping
// first-seen order.
func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
