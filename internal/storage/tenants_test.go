package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jeff0327/adsblog/internal/models"
)

func TestGetTenant_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTenant(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTenant(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateTenant_RoundTripsSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	disabled := false
	temp := 0.4
	maxTokens := 1500
	in := &models.Tenant{
		Key:            "cafe",
		SiteTitle:      "Cafe Blog",
		SiteURL:        "https://cafe.example.com",
		Language:       "Korean",
		TargetKeywords: []string{"coffee", "latte"},
		TopicFeeds:     []string{"https://news.example.com/rss"},
		AutoPosting:    &disabled,
		ImagesPerPost:  2,
		EmbedImages:    true,
		Marketing: models.Marketing{
			BusinessName:        "Bean There",
			TargetAudience:      "home baristas",
			UniqueSellingPoints: []string{"single origin"},
		},
		AI: models.AISettings{
			Provider:    "claude",
			APIKey:      "sk-tenant",
			Model:       "claude-test",
			Temperature: &temp,
			MaxTokens:   &maxTokens,
		},
	}
	if err := store.CreateTenant(ctx, in); err != nil {
		t.Fatalf("CreateTenant() error: %v", err)
	}

	got, err := store.GetTenant(ctx, "cafe")
	if err != nil {
		t.Fatalf("GetTenant() error: %v", err)
	}

	if got.SiteTitle != "Cafe Blog" {
		t.Errorf("SiteTitle = %q, want %q", got.SiteTitle, "Cafe Blog")
	}
	if got.Language != "Korean" {
		t.Errorf("Language = %q, want %q", got.Language, "Korean")
	}
	if len(got.TargetKeywords) != 2 || got.TargetKeywords[1] != "latte" {
		t.Errorf("TargetKeywords = %v, want [coffee latte]", got.TargetKeywords)
	}
	if len(got.TopicFeeds) != 1 {
		t.Errorf("TopicFeeds = %v, want one feed", got.TopicFeeds)
	}
	if !got.AutoPostingDisabled() {
		t.Error("AutoPostingDisabled() = false, want true")
	}
	if got.ImagesPerPost != 2 || !got.EmbedImages {
		t.Errorf("ImagesPerPost/EmbedImages = %d/%v, want 2/true", got.ImagesPerPost, got.EmbedImages)
	}
	if got.Marketing.BusinessName != "Bean There" || got.Marketing.TargetAudience != "home baristas" {
		t.Errorf("Marketing = %+v", got.Marketing)
	}
	if got.AI.Provider != "claude" || got.AI.APIKey != "sk-tenant" || got.AI.Model != "claude-test" {
		t.Errorf("AI = %+v", got.AI)
	}
	if got.AI.Temperature == nil || *got.AI.Temperature != 0.4 {
		t.Errorf("AI.Temperature = %v, want 0.4", got.AI.Temperature)
	}
	if got.AI.MaxTokens == nil || *got.AI.MaxTokens != 1500 {
		t.Errorf("AI.MaxTokens = %v, want 1500", got.AI.MaxTokens)
	}
	if got.LastPostedAt != nil {
		t.Errorf("LastPostedAt = %v, want nil", got.LastPostedAt)
	}
}

func TestCreateTenant_Defaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestTenant(t, store, "plain")

	got, err := store.GetTenant(ctx, "plain")
	if err != nil {
		t.Fatalf("GetTenant() error: %v", err)
	}
	if got.AutoPosting != nil {
		t.Errorf("AutoPosting = %v, want nil", *got.AutoPosting)
	}
	if got.AutoPostingDisabled() {
		t.Error("AutoPostingDisabled() = true for unset flag")
	}
	if got.Language != "English" {
		t.Errorf("Language = %q, want English", got.Language)
	}
	if got.ImagesPerPost != 3 {
		t.Errorf("ImagesPerPost = %d, want 3", got.ImagesPerPost)
	}
	if got.AI.Temperature != nil || got.AI.MaxTokens != nil {
		t.Errorf("AI overrides = %v/%v, want nil", got.AI.Temperature, got.AI.MaxTokens)
	}
	if got.TargetKeywords == nil {
		t.Error("TargetKeywords is nil, want empty slice")
	}
}

func TestUpdateTenantLastPosted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestTenant(t, store, "t1")

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	if err := store.UpdateTenantLastPosted(ctx, "t1", at); err != nil {
		t.Fatalf("UpdateTenantLastPosted() error: %v", err)
	}

	got, err := store.GetTenant(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTenant() error: %v", err)
	}
	if got.LastPostedAt == nil || !got.LastPostedAt.Equal(at) {
		t.Errorf("LastPostedAt = %v, want %v", got.LastPostedAt, at)
	}

	if err := store.UpdateTenantLastPosted(ctx, "ghost", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTenantLastPosted(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestListSchedulableTenantKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	enabled, disabled := true, false
	for _, tn := range []models.Tenant{
		{Key: "b-unset", SiteTitle: "B"},
		{Key: "a-on", SiteTitle: "A", AutoPosting: &enabled},
		{Key: "c-off", SiteTitle: "C", AutoPosting: &disabled},
	} {
		if err := store.CreateTenant(ctx, &tn); err != nil {
			t.Fatalf("CreateTenant(%q) error: %v", tn.Key, err)
		}
	}

	keys, err := store.ListSchedulableTenantKeys(ctx)
	if err != nil {
		t.Fatalf("ListSchedulableTenantKeys() error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a-on" || keys[1] != "b-unset" {
		t.Errorf("keys = %v, want [a-on b-unset]", keys)
	}
}

func TestCategoriesAndKeywords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createTestTenant(t, store, "t1")
	createTestTenant(t, store, "t2")

	second, err := store.CreateCategory(ctx, &models.Category{TenantKey: "t1", Name: "Brewing", Slug: "brewing", OrderIndex: 2})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	first, err := store.CreateCategory(ctx, &models.Category{TenantKey: "t1", Name: "Beans", Slug: "beans", OrderIndex: 1})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	again, err := store.CreateCategory(ctx, &models.Category{TenantKey: "t1", Name: "Beans!", Slug: "beans"})
	if err != nil {
		t.Fatalf("CreateCategory(duplicate) error: %v", err)
	}
	if again != first {
		t.Errorf("duplicate slug returned id %d, want %d", again, first)
	}

	cats, err := store.ListCategories(ctx, "t1")
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if len(cats) != 2 || cats[0].Slug != "beans" || cats[1].Slug != "brewing" {
		t.Fatalf("categories = %+v, want beans then brewing", cats)
	}

	for _, kw := range []models.Keyword{
		{TenantKey: "t1", Keyword: "arabica", CategoryID: &first},
		{TenantKey: "t1", Keyword: "pour over", CategoryID: &second},
		{TenantKey: "t1", Keyword: "coffee", IsGlobal: true},
		{TenantKey: "t1", Keyword: "coffee", IsGlobal: true},
		{TenantKey: "t2", Keyword: "tea", IsGlobal: true},
	} {
		if err := store.CreateKeyword(ctx, &kw); err != nil {
			t.Fatalf("CreateKeyword(%q) error: %v", kw.Keyword, err)
		}
	}

	scoped, err := store.ListKeywords(ctx, "t1", &first)
	if err != nil {
		t.Fatalf("ListKeywords(category) error: %v", err)
	}
	if len(scoped) != 2 || scoped[0].Keyword != "arabica" || scoped[1].Keyword != "coffee" {
		t.Errorf("scoped keywords = %+v, want arabica and coffee", scoped)
	}
	if !scoped[1].IsGlobal {
		t.Error("coffee keyword IsGlobal = false, want true")
	}

	all, err := store.ListKeywords(ctx, "t1", nil)
	if err != nil {
		t.Fatalf("ListKeywords(nil) error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d keywords for t1, want 3", len(all))
	}

	if err := store.CreateKeyword(ctx, &models.Keyword{TenantKey: "t1", Keyword: "   "}); err == nil {
		t.Error("CreateKeyword(blank) error = nil, want error")
	}
}

func TestSeedTenant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := TenantSeed{
		Tenant: models.Tenant{Key: "seeded", SiteTitle: "Seeded"},
		Categories: []CategorySeed{
			{Name: "Guides", Slug: "guides", Keywords: []string{"how to"}},
			{Name: "News", Slug: "news"},
		},
		GlobalKeywords: []string{"gardening"},
	}

	created, err := store.SeedTenant(ctx, seed)
	if err != nil {
		t.Fatalf("SeedTenant() error: %v", err)
	}
	if !created {
		t.Fatal("SeedTenant() created = false on empty store")
	}

	cats, err := store.ListCategories(ctx, "seeded")
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if len(cats) != 2 || cats[0].Slug != "guides" || cats[0].OrderIndex != 0 {
		t.Fatalf("categories = %+v", cats)
	}

	kws, err := store.ListKeywords(ctx, "seeded", &cats[0].ID)
	if err != nil {
		t.Fatalf("ListKeywords() error: %v", err)
	}
	if len(kws) != 2 {
		t.Errorf("got %d keywords for guides, want 2 (scoped + global)", len(kws))
	}

	seed.Tenant.SiteTitle = "Changed"
	created, err = store.SeedTenant(ctx, seed)
	if err != nil {
		t.Fatalf("second SeedTenant() error: %v", err)
	}
	if created {
		t.Error("second SeedTenant() created = true, want false")
	}
	got, err := store.GetTenant(ctx, "seeded")
	if err != nil {
		t.Fatalf("GetTenant() error: %v", err)
	}
	if got.SiteTitle != "Seeded" {
		t.Errorf("SiteTitle = %q, existing tenant was overwritten", got.SiteTitle)
	}
}

func TestSeedTenant_FailureLeavesNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := TenantSeed{
		Tenant: models.Tenant{Key: "partial", SiteTitle: "Partial"},
		Categories: []CategorySeed{
			{Name: "Guides", Slug: "guides", Keywords: []string{"how to", "   "}},
		},
	}

	created, err := store.SeedTenant(ctx, seed)
	if err == nil {
		t.Fatal("SeedTenant() error = nil, want blank keyword error")
	}
	if created {
		t.Error("SeedTenant() created = true on failure")
	}

	if _, err := store.GetTenant(ctx, "partial"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTenant() after failed seed error = %v, want ErrNotFound", err)
	}
	cats, err := store.ListCategories(ctx, "partial")
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("categories after failed seed = %+v, want none", cats)
	}

	seed.Categories[0].Keywords = []string{"how to"}
	created, err = store.SeedTenant(ctx, seed)
	if err != nil {
		t.Fatalf("retried SeedTenant() error: %v", err)
	}
	if !created {
		t.Fatal("retried SeedTenant() created = false, want true")
	}
	kws, err := store.ListKeywords(ctx, "partial", nil)
	if err != nil {
		t.Fatalf("ListKeywords() error: %v", err)
	}
	if len(kws) != 1 || kws[0].Keyword != "how to" {
		t.Errorf("keywords after retry = %+v", kws)
	}
}
