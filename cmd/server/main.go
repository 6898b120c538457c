package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jeff0327/adsblog/internal/api"
	"github.com/Jeff0327/adsblog/internal/config"
	"github.com/Jeff0327/adsblog/internal/content"
	"github.com/Jeff0327/adsblog/internal/feeds"
	"github.com/Jeff0327/adsblog/internal/generator"
	"github.com/Jeff0327/adsblog/internal/images"
	"github.com/Jeff0327/adsblog/internal/models"
	"github.com/Jeff0327/adsblog/internal/permalink"
	"github.com/Jeff0327/adsblog/internal/scheduler"
	"github.com/Jeff0327/adsblog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Create store and seed tenants declared in the config file.
	store := storage.NewStore(db)
	defer store.Close()
	for _, t := range cfg.Tenants {
		if _, err := store.SeedTenant(context.Background(), tenantSeed(t)); err != nil {
			slog.Error("failed to seed tenant", "tenant", t.Key, "error", err)
			os.Exit(1)
		}
	}

	strategy, err := permalink.ParseStrategy(cfg.Generator.SlugStrategy)
	if err != nil {
		slog.Error("invalid slug strategy", "error", err)
		os.Exit(1)
	}

	var slugOpts []permalink.Option
	if cfg.Generator.UnicodeSlugs {
		slugOpts = append(slugOpts, permalink.WithScriptPreserved())
	}
	slugs := permalink.New(strategy, slugOpts...)

	var compactor *content.Compactor
	if *cfg.Generator.CompactHTML {
		compactor = content.NewCompactor()
	}

	gen := generator.New(store, images.NewUnsplash(images.Config{
		AccessKey: cfg.Images.AccessKey,
		BaseURL:   cfg.Images.BaseURL,
		Timeout:   cfg.ImagesTimeout(),
	}), generator.Options{
		Credentials:     cfg.Credentials(),
		DefaultProvider: cfg.AI.DefaultProvider,
		Slugs:           slugs,
		DefaultKeywords: cfg.Generator.DefaultKeywords,
		RequestTimeout:  cfg.RequestTimeout(),
		BaseURL:         cfg.Server.BaseURL,
		Compactor:       compactor,
		Trends:          feeds.NewFetcher(),
	})
	slog.Info("generator configured",
		"default_provider", cfg.AI.DefaultProvider,
		"slug_strategy", slugs.Strategy(),
		"request_timeout", cfg.RequestTimeout().String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the in-process scheduler when enabled.
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(store, gen, scheduler.Config{
			Schedule:      cfg.Scheduler.Schedule,
			MaxConcurrent: cfg.Scheduler.MaxConcurrent,
		})
		if err != nil {
			slog.Error("failed to create scheduler", "error", err)
			os.Exit(1)
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(store, gen, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "base_url", cfg.Server.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// setupLogging installs the default slog handler selected by the config.
func setupLogging(cfg config.LogConfig) {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// tenantSeed converts a [[tenants]] block into a store seed.
func tenantSeed(t config.TenantConfig) storage.TenantSeed {
	seed := storage.TenantSeed{
		Tenant: models.Tenant{
			Key:             t.Key,
			SiteTitle:       t.SiteTitle,
			SiteDescription: t.SiteDescription,
			SiteURL:         t.SiteURL,
			Language:        t.Language,
			ContentStyle:    t.ContentStyle,
			Marketing: models.Marketing{
				BusinessName:        t.BusinessName,
				Industry:            t.Industry,
				BusinessDescription: t.BusinessDescription,
				PromotionGoal:       t.PromotionGoal,
				TargetAudience:      t.TargetAudience,
				BrandVoice:          t.BrandVoice,
				UniqueSellingPoints: t.UniqueSellingPoints,
				CoreValues:          t.CoreValues,
			},
			TargetKeywords: t.TargetKeywords,
			TopicFeeds:     t.TopicFeeds,
			AutoPosting:    t.AutoPosting,
			ImagesPerPost:  t.ImagesPerPost,
			EmbedImages:    t.EmbedImages,
			AI: models.AISettings{
				Provider:      t.Provider,
				APIKey:        t.APIKey,
				Model:         t.Model,
				ContentPrompt: t.ContentPrompt,
				SEOPrompt:     t.SEOPrompt,
				Temperature:   t.Temperature,
				MaxTokens:     t.MaxTokens,
			},
		},
		GlobalKeywords: t.Keywords,
	}
	for _, c := range t.Categories {
		if c.Slug == "" {
			c.Slug = permalink.Normalize(c.Name)
		}
		seed.Categories = append(seed.Categories, storage.CategorySeed{
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
			Keywords:    c.Keywords,
		})
	}
	return seed
}
