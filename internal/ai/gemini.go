package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Compile-time interface check.
var _ Provider = (*GeminiProvider)(nil)

const geminiAPIURL = "https://generativelanguage.googleapis.com"

// GeminiProvider implements Provider using the Gemini generateContent REST
// endpoint.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiProvider creates a GeminiProvider whose HTTP client times out
// after the configured request timeout.
func NewGeminiProvider(cfg ProviderConfig) *GeminiProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIURL
	}
	return &GeminiProvider{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: httpTimeout(cfg),
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiRequest is the request body for models.generateContent.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse is the response body from models.generateContent.
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) Name() ProviderName { return ProviderGemini }

// Generate posts the prompt as a single user turn and joins the text parts
// of the first candidate.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	model := params.Model
	if model == "" {
		model = p.model
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, url.PathEscape(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("content-type", "application/json")

	slog.Debug("calling Gemini API", "model", model)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError(ProviderGemini, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(ProviderGemini, fmt.Errorf("reading response body: %w", err))
	}

	var apiResp geminiResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && apiResp.Error != nil && apiResp.Error.Message != "" {
			msg = apiResp.Error.Message
		}
		return "", statusError(ProviderGemini, resp.StatusCode, msg, string(respBody))
	}

	if decodeErr != nil {
		return "", invalidResponse(ProviderGemini, "parsing response: %v", decodeErr)
	}
	if apiResp.Error != nil {
		return "", statusError(ProviderGemini, apiResp.Error.Code, apiResp.Error.Message, string(respBody))
	}
	if len(apiResp.Candidates) == 0 {
		return "", invalidResponse(ProviderGemini, "empty response: no candidates returned")
	}

	var b strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", invalidResponse(ProviderGemini, "empty response: candidate has no text (finish reason %q)",
			apiResp.Candidates[0].FinishReason)
	}
	return text, nil
}
