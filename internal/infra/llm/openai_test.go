// Unit tests for OpenAICompatProvider.
// Uses httptest.NewServer to mock the chat completions API: no real backend needed.
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// ChatCompletion tests
// ============================================================================

func TestOpenAICompatProvider_ChatCompletion_Success(t *testing.T) {
	t.Parallel()

	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gpt-4o-2024","choices":[{"message":{"role":"assistant","content":"  {\"ok\":true}  "},"finish_reason":"stop"}],"usage":{"total_tokens":42}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(srv.Client(), ProviderOpenAI, srv.URL+"/", "sk-test", "gpt-4o")
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages:    []Message{{Role: "user", Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   3000,
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("expected trimmed content, got %q", resp.Content)
	}
	if resp.Model != "gpt-4o-2024" || resp.Tokens != 42 || resp.StopReason != "stop" {
		t.Errorf("unexpected response metadata: %+v", resp)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 3000 || got.Temperature != 0.7 {
		t.Errorf("unexpected request body: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestOpenAICompatProvider_ChatCompletion_ModelOverride(t *testing.T) {
	t.Parallel()

	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(srv.Client(), ProviderXAI, srv.URL, "k", "grok-beta")
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{Model: "grok-2"})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if got.Model != "grok-2" {
		t.Errorf("expected override model grok-2, got %q", got.Model)
	}
	if resp.Model != "grok-2" {
		t.Errorf("expected response model to default to request model, got %q", resp.Model)
	}
}

func TestOpenAICompatProvider_ChatCompletion_ServerError_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(srv.Client(), ProviderOpenAI, srv.URL, "bad", "gpt-4o")
	_, err := p.ChatCompletion(context.Background(), ChatRequest{})
	if err == nil {
		t.Fatal("expected error for 401 response, got nil")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}

func TestOpenAICompatProvider_ChatCompletion_NoChoices_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(srv.Client(), ProviderOpenAI, srv.URL, "k", "gpt-4o")
	if _, err := p.ChatCompletion(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error for empty choices, got nil")
	}
}

func TestOpenAICompatProvider_ChatCompletion_InvalidJSON_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(srv.Client(), ProviderOpenAI, srv.URL, "k", "gpt-4o")
	if _, err := p.ChatCompletion(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestOpenAICompatProvider_ChatCompletion_Unreachable_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOpenAICompatProvider(http.DefaultClient, ProviderOpenAI, url, "k", "gpt-4o")
	if _, err := p.ChatCompletion(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected transport error, got nil")
	}
}

// ============================================================================
// HealthCheck / ModelInfo tests
// ============================================================================

func TestOpenAICompatProvider_HealthCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" || r.Method != http.MethodGet {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	if err := NewOpenAICompatProvider(srv.Client(), ProviderOpenAI, srv.URL, "good", "gpt-4o").HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
	if err := NewOpenAICompatProvider(srv.Client(), ProviderOpenAI, srv.URL, "bad", "gpt-4o").HealthCheck(context.Background()); err == nil {
		t.Error("expected error for rejected key, got nil")
	}
}

func TestOpenAICompatProvider_ModelInfo(t *testing.T) {
	t.Parallel()

	p := NewOpenAICompatProvider(http.DefaultClient, ProviderXAI, "https://api.x.ai/v1", "k", "grok-beta")
	info := p.ModelInfo()
	if info.ID != "grok-beta" || info.Provider != ProviderXAI {
		t.Errorf("unexpected model info: %+v", info)
	}
}
