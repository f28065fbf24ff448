// Package llm: OpenAI-compatible HTTP adapter.
// OpenAICompatProvider speaks the /chat/completions dialect shared by OpenAI and xAI.
// Endpoints used:
//   - POST /chat/completions: non-streaming chat completion
//   - GET  /models: health check (also validates the key)
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	mimeJSON            = "application/json"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"

	// maxErrorBody bounds how much of an upstream error body ends up in error messages.
	maxErrorBody = 512
)

var errNoChoices = errors.New("no choices in response")

// OpenAICompatProvider implements LLMProvider against an OpenAI-compatible API.
type OpenAICompatProvider struct {
	provider   string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompatProvider creates a provider bound to one API key and default model.
// provider is the name reported by ModelInfo ("xai", "openai").
func NewOpenAICompatProvider(httpClient *http.Client, provider, baseURL, apiKey, model string) *OpenAICompatProvider {
	return &OpenAICompatProvider{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

// ─── wire types ──────────────────────────────────────────────────────────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// ─── LLMProvider implementation ─────────────────────────────────────────────

// ChatCompletion performs a non-streaming chat via POST /chat/completions.
func (p *OpenAICompatProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = chatMessage(m)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	respBody, err := p.do(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close() //nolint:errcheck

	var out chatCompletionResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&out); decodeErr != nil {
		return nil, fmt.Errorf("%s chat: decode response: %w", p.provider, decodeErr)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%s chat: %w", p.provider, errNoChoices)
	}

	reported := out.Model
	if reported == "" {
		reported = model
	}
	return &ChatResponse{
		Content:    strings.TrimSpace(out.Choices[0].Message.Content),
		StopReason: out.Choices[0].FinishReason,
		Tokens:     out.Usage.TotalTokens,
		Model:      reported,
	}, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *OpenAICompatProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.model, Provider: p.provider}
}

// HealthCheck calls GET /models: returns nil if the API is reachable and the key is accepted.
func (p *OpenAICompatProvider) HealthCheck(ctx context.Context) error {
	body, err := p.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	return body.Close()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// do sends an authenticated request to baseURL+path and returns the response body.
// Caller is responsible for closing the returned ReadCloser.
func (p *OpenAICompatProvider) do(ctx context.Context, method, path string, body []byte) (io.ReadCloser, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: build request: %w", p.provider, method, path, err)
	}
	if body != nil {
		req.Header.Set(headerContentType, mimeJSON)
	}
	req.Header.Set(headerAuthorization, "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", p.provider, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("%s %s %s: status %d: %s",
			p.provider, method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp.Body, nil
}
