package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Compile-time interface check.
var _ Provider = (*ClaudeProvider)(nil)

// ClaudeProvider implements Provider using the Anthropic Messages API.
type ClaudeProvider struct {
	client anthropic.Client
	model  string
}

// NewClaudeProvider creates a ClaudeProvider with SDK retries disabled.
func NewClaudeProvider(cfg ProviderConfig) *ClaudeProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: httpTimeout(cfg)}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (p *ClaudeProvider) Name() ProviderName { return ProviderClaude }

// Generate sends the prompt as a single user turn and concatenates the text
// blocks of the reply.
func (p *ClaudeProvider) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	model := params.Model
	if model == "" {
		model = p.model
	}

	slog.Debug("calling Anthropic API", "model", model)

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(params.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(params.Temperature),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", statusError(ProviderClaude, apiErr.StatusCode, "API error", upstreamBody(apiErr.RawJSON(), ""))
		}
		return "", transportError(ProviderClaude, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", invalidResponse(ProviderClaude, "empty response: no text content blocks returned")
	}
	return text, nil
}
