package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/Jeff0327/adsblog/internal/ai"
	"github.com/Jeff0327/adsblog/internal/permalink"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Log       LogConfig       `toml:"log"`
	AI        AIConfig        `toml:"ai"`
	Images    ImagesConfig    `toml:"images"`
	Generator GeneratorConfig `toml:"generator"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Trigger   TriggerConfig   `toml:"trigger"`
	Tenants   []TenantConfig  `toml:"tenants"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
	// BaseURL builds canonical post URLs for tenants without a site_url.
	BaseURL string `toml:"base_url"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AIConfig holds deployment-wide text-generation settings. Tenants may
// override provider, key and model.
type AIConfig struct {
	DefaultProvider       string         `toml:"default_provider"`
	RequestTimeoutSeconds int            `toml:"request_timeout_seconds"`
	OpenAI                ProviderConfig `toml:"openai"`
	Gemini                ProviderConfig `toml:"gemini"`
	Claude                ProviderConfig `toml:"claude"`
}

// ProviderConfig is the fallback credential of one provider.
type ProviderConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// ImagesConfig holds Unsplash settings.
type ImagesConfig struct {
	AccessKey      string `toml:"access_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// GeneratorConfig holds generation defaults.
type GeneratorConfig struct {
	SlugStrategy    string   `toml:"slug_strategy"`
	DefaultKeywords []string `toml:"default_keywords"`
	// CompactHTML is nil when unset, which means enabled.
	CompactHTML *bool `toml:"compact_html"`
	// UnicodeSlugs keeps non-Latin letters in slugs instead of transliterating.
	UnicodeSlugs bool `toml:"unicode_slugs"`
}

// SchedulerConfig holds in-process cron settings.
type SchedulerConfig struct {
	Enabled       bool   `toml:"enabled"`
	Schedule      string `toml:"schedule"`
	MaxConcurrent int    `toml:"max_concurrent"`
}

// TriggerConfig holds the shared secret of the HTTP trigger.
type TriggerConfig struct {
	Secret string `toml:"secret"`
}

// TenantConfig seeds a tenant on first start. Existing tenants are never
// overwritten from the file.
type TenantConfig struct {
	Key             string `toml:"key"`
	SiteTitle       string `toml:"site_title"`
	SiteDescription string `toml:"site_description"`
	SiteURL         string `toml:"site_url"`
	Language        string `toml:"language"`
	ContentStyle    string `toml:"content_style"`

	BusinessName        string   `toml:"business_name"`
	Industry            string   `toml:"industry"`
	BusinessDescription string   `toml:"business_description"`
	PromotionGoal       string   `toml:"promotion_goal"`
	TargetAudience      string   `toml:"target_audience"`
	BrandVoice          string   `toml:"brand_voice"`
	UniqueSellingPoints []string `toml:"unique_selling_points"`
	CoreValues          []string `toml:"core_values"`

	TargetKeywords []string `toml:"target_keywords"`
	TopicFeeds     []string `toml:"topic_feeds"`
	Keywords       []string `toml:"keywords"`

	AutoPosting   *bool `toml:"auto_posting"`
	ImagesPerPost int   `toml:"images_per_post"`
	EmbedImages   bool  `toml:"embed_images"`

	Provider      string   `toml:"provider"`
	APIKey        string   `toml:"api_key"`
	Model         string   `toml:"model"`
	ContentPrompt string   `toml:"content_prompt"`
	SEOPrompt     string   `toml:"seo_prompt"`
	Temperature   *float64 `toml:"temperature"`
	MaxTokens     *int     `toml:"max_tokens"`

	Categories []CategoryConfig `toml:"categories"`
}

// CategoryConfig seeds one category and its keywords.
type CategoryConfig struct {
	Name        string   `toml:"name"`
	Slug        string   `toml:"slug"`
	Description string   `toml:"description"`
	Keywords    []string `toml:"keywords"`
}

// envOverrides are read from the process environment after the file.
type envOverrides struct {
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	GeminiKey    string `env:"GEMINI_API_KEY"`
	AnthropicKey string `env:"ANTHROPIC_API_KEY"`
	UnsplashKey  string `env:"UNSPLASH_ACCESS_KEY"`
	CronSecret   string `env:"CRON_SECRET"`
	DBPath       string `env:"ADSBLOG_DB_PATH"`
	Port         int    `env:"PORT"`
	BaseURL      string `env:"ADSBLOG_BASE_URL"`
	LogLevel     string `env:"LOG_LEVEL"`
}

const defaultConfigContent = `[server]
port = 8080
base_url = "http://localhost:8080"

[database]
path = "./data/adsblog.db"          # or set ADSBLOG_DB_PATH

[log]
level = "info"                      # debug, info, warn, error
format = "text"                     # text or json

[ai]
default_provider = "gemini"         # openai, gemini or claude
request_timeout_seconds = 60

[ai.openai]
api_key = ""                        # or set OPENAI_API_KEY
model = "gpt-4o"

[ai.gemini]
api_key = ""                        # or set GEMINI_API_KEY
model = "gemini-2.0-flash"

[ai.claude]
api_key = ""                        # or set ANTHROPIC_API_KEY
model = "claude-3-5-sonnet-latest"

[images]
access_key = ""                     # Unsplash access key, or set UNSPLASH_ACCESS_KEY
timeout_seconds = 30

[generator]
slug_strategy = "timestamp"         # timestamp or counter
default_keywords = ["blog", "article", "content"]
compact_html = true
unicode_slugs = false               # keep non-Latin letters in slugs

[scheduler]
enabled = false
schedule = "0 9 * * *"              # standard cron expression
max_concurrent = 2

[trigger]
secret = ""                         # or set CRON_SECRET; empty rejects every trigger call

[[tenants]]
key = "default"
site_title = "My Blog"
language = "English"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file
// and would otherwise be silently replaced by their defaults.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("ai", "request_timeout_seconds") && cfg.AI.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("invalid ai.request_timeout_seconds %d: must be >= 1", cfg.AI.RequestTimeoutSeconds)
	}
	if md.IsDefined("images", "timeout_seconds") && cfg.Images.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid images.timeout_seconds %d: must be >= 1", cfg.Images.TimeoutSeconds)
	}
	if md.IsDefined("scheduler", "max_concurrent") && cfg.Scheduler.MaxConcurrent < 1 {
		return fmt.Errorf("invalid scheduler.max_concurrent %d: must be >= 1", cfg.Scheduler.MaxConcurrent)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/adsblog.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.AI.DefaultProvider == "" {
		cfg.AI.DefaultProvider = string(ai.ProviderGemini)
	}
	if cfg.AI.RequestTimeoutSeconds == 0 {
		cfg.AI.RequestTimeoutSeconds = int(ai.DefaultTimeout / time.Second)
	}
	if cfg.Images.TimeoutSeconds == 0 {
		cfg.Images.TimeoutSeconds = 30
	}
	if cfg.Generator.SlugStrategy == "" {
		cfg.Generator.SlugStrategy = string(permalink.StrategyTimestamp)
	}
	if len(cfg.Generator.DefaultKeywords) == 0 {
		cfg.Generator.DefaultKeywords = []string{"blog", "article", "content"}
	}
	if cfg.Generator.CompactHTML == nil {
		v := true
		cfg.Generator.CompactHTML = &v
	}
	if cfg.Scheduler.Schedule == "" {
		cfg.Scheduler.Schedule = "0 9 * * *"
	}
	if cfg.Scheduler.MaxConcurrent == 0 {
		cfg.Scheduler.MaxConcurrent = 2
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}

	overrides := []struct {
		value string
		dst   *string
	}{
		{o.OpenAIKey, &cfg.AI.OpenAI.APIKey},
		{o.GeminiKey, &cfg.AI.Gemini.APIKey},
		{o.AnthropicKey, &cfg.AI.Claude.APIKey},
		{o.UnsplashKey, &cfg.Images.AccessKey},
		{o.CronSecret, &cfg.Trigger.Secret},
		{o.DBPath, &cfg.Database.Path},
		{o.BaseURL, &cfg.Server.BaseURL},
		{o.LogLevel, &cfg.Log.Level},
	}
	for _, ov := range overrides {
		if ov.value != "" {
			*ov.dst = ov.value
		}
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	return nil
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if _, err := cfg.Log.SlogLevel(); err != nil {
		return err
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be \"text\" or \"json\"", cfg.Log.Format)
	}

	name, ok := ai.ParseProviderName(cfg.AI.DefaultProvider)
	if !ok {
		return fmt.Errorf("invalid ai.default_provider %q: must be \"openai\", \"gemini\" or \"claude\"", cfg.AI.DefaultProvider)
	}

	if _, err := permalink.ParseStrategy(cfg.Generator.SlugStrategy); err != nil {
		return fmt.Errorf("invalid generator.slug_strategy: %w", err)
	}

	if cfg.Scheduler.Enabled {
		if _, err := cron.ParseStandard(cfg.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid scheduler.schedule %q: %w", cfg.Scheduler.Schedule, err)
		}
	}

	seen := make(map[string]bool, len(cfg.Tenants))
	for i, t := range cfg.Tenants {
		if err := validateTenant(t); err != nil {
			return fmt.Errorf("tenants[%d]: %w", i, err)
		}
		if seen[t.Key] {
			return fmt.Errorf("tenants[%d]: duplicate key %q", i, t.Key)
		}
		seen[t.Key] = true
	}

	if cfg.Trigger.Secret == "" {
		slog.Warn("trigger.secret is empty: the generation endpoint will reject every call (set CRON_SECRET)")
	}
	if cfg.Credentials().For(name).APIKey == "" {
		slog.Warn("no API key for the default AI provider: tenants must set their own", "provider", name)
	}
	if cfg.Images.AccessKey == "" {
		slog.Warn("images.access_key is empty: posts will be generated without images")
	}

	return nil
}

func validateTenant(t TenantConfig) error {
	if strings.TrimSpace(t.Key) == "" {
		return errors.New("key is required")
	}
	if strings.TrimSpace(t.SiteTitle) == "" {
		return fmt.Errorf("tenant %q: site_title is required", t.Key)
	}
	if t.Provider != "" {
		if _, ok := ai.ParseProviderName(t.Provider); !ok {
			return fmt.Errorf("tenant %q: unsupported provider %q", t.Key, t.Provider)
		}
	}
	if t.ImagesPerPost < 0 {
		return fmt.Errorf("tenant %q: images_per_post must be >= 0", t.Key)
	}
	if t.Temperature != nil && (*t.Temperature < 0 || *t.Temperature > 2) {
		return fmt.Errorf("tenant %q: temperature %.2f out of range [0, 2]", t.Key, *t.Temperature)
	}
	if t.MaxTokens != nil && *t.MaxTokens < 1 {
		return fmt.Errorf("tenant %q: max_tokens must be >= 1", t.Key)
	}
	for _, c := range t.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("tenant %q: category name is required", t.Key)
		}
	}
	return nil
}

// SlogLevel parses the configured log level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", c.Level, err)
	}
	return level, nil
}

// Credentials returns the deployment-wide provider credentials.
func (c *Config) Credentials() ai.Credentials {
	return ai.Credentials{
		OpenAI: ai.Credential(c.AI.OpenAI),
		Gemini: ai.Credential(c.AI.Gemini),
		Claude: ai.Credential(c.AI.Claude),
	}
}

// RequestTimeout bounds every outbound call of a generation run.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.AI.RequestTimeoutSeconds) * time.Second
}

// ImagesTimeout is the HTTP client timeout of the image search adapter.
func (c *Config) ImagesTimeout() time.Duration {
	return time.Duration(c.Images.TimeoutSeconds) * time.Second
}
