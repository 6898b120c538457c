package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jeff0327/adsblog/internal/models"
)

// ProviderName identifies a text-generation backend.
type ProviderName string

const (
	ProviderOpenAI ProviderName = "openai"
	ProviderGemini ProviderName = "gemini"
	ProviderClaude ProviderName = "claude"
)

// Default generation parameters applied when a tenant sets none.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 60 * time.Second
)

var defaultModels = map[ProviderName]string{
	ProviderOpenAI: "gpt-4o",
	ProviderGemini: "gemini-2.0-flash",
	ProviderClaude: "claude-3-5-sonnet-latest",
}

// ParseProviderName normalizes a configured provider name. "anthropic" is
// accepted as an alias of claude. It reports false for unknown names.
func ParseProviderName(s string) (ProviderName, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return ProviderOpenAI, true
	case "gemini":
		return ProviderGemini, true
	case "claude", "anthropic":
		return ProviderClaude, true
	default:
		return "", false
	}
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(name ProviderName) string {
	return defaultModels[name]
}

// Provider is the capability every text-generation backend implements.
type Provider interface {
	// Name returns the backend this provider talks to.
	Name() ProviderName

	// Generate sends a single prompt and returns the raw generated text.
	// It makes exactly one attempt and never retries.
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
}

// GenerateParams are the per-call sampling parameters.
type GenerateParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ProviderConfig is a fully resolved provider selection: backend, key, model
// and sampling parameters.
type ProviderConfig struct {
	Name        ProviderName
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Params returns the sampling parameters of the configuration.
func (c ProviderConfig) Params() GenerateParams {
	return GenerateParams{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

// Credential is the deployment-wide fallback for one provider.
type Credential struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Credentials holds the deployment-wide fallback credential of every
// provider. It is built once from configuration and injected.
type Credentials struct {
	OpenAI Credential
	Gemini Credential
	Claude Credential
}

// For returns the credential of the named provider.
func (c Credentials) For(name ProviderName) Credential {
	switch name {
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGemini:
		return c.Gemini
	case ProviderClaude:
		return c.Claude
	default:
		return Credential{}
	}
}

// Resolve turns a tenant's provider settings into a ProviderConfig. The
// provider is the tenant's choice or defaultProvider; the API key is the
// tenant override or the deployment credential. It fails with
// UnsupportedProvider or MissingCredentials without touching the network.
func Resolve(settings models.AISettings, creds Credentials, defaultProvider string) (ProviderConfig, error) {
	raw := settings.Provider
	if strings.TrimSpace(raw) == "" {
		raw = defaultProvider
	}

	name, ok := ParseProviderName(raw)
	if !ok {
		return ProviderConfig{}, &Error{
			Kind:    KindUnsupportedProvider,
			Message: fmt.Sprintf("unsupported AI provider %q", raw),
		}
	}

	fallback := creds.For(name)

	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		apiKey = fallback.APIKey
	}
	if apiKey == "" {
		return ProviderConfig{}, &Error{
			Kind:     KindMissingCredentials,
			Provider: name,
			Message:  fmt.Sprintf("no API key configured for provider %s", name),
		}
	}

	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = fallback.Model
	}
	if model == "" {
		model = DefaultModel(name)
	}

	cfg := ProviderConfig{
		Name:        name,
		APIKey:      apiKey,
		Model:       model,
		BaseURL:     fallback.BaseURL,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
	if settings.Temperature != nil {
		cfg.Temperature = *settings.Temperature
	}
	if settings.MaxTokens != nil && *settings.MaxTokens > 0 {
		cfg.MaxTokens = *settings.MaxTokens
	}
	return cfg, nil
}

// NewProvider creates the backend selected by cfg.Name.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Name {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case ProviderGemini:
		return NewGeminiProvider(cfg), nil
	case ProviderClaude:
		return NewClaudeProvider(cfg), nil
	default:
		return nil, &Error{
			Kind:    KindUnsupportedProvider,
			Message: fmt.Sprintf("unsupported AI provider %q", cfg.Name),
		}
	}
}

// httpTimeout returns the client-level timeout for a provider.
func httpTimeout(cfg ProviderConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return DefaultTimeout
}
