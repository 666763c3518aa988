package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatehouse-hq/janus/pkg/config"
)

// -----------------------------------------------------------------------------
// Factory
// -----------------------------------------------------------------------------

func TestNewSelectsByType(t *testing.T) {
	p, err := New("gpt", config.ProviderConfig{Type: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	if p.Type() != "openai" || p.Name() != "gpt" {
		t.Errorf("got type=%q name=%q", p.Type(), p.Name())
	}

	p, err = New("claude", config.ProviderConfig{Type: "Anthropic", APIKey: "k"})
	if err != nil {
		t.Fatalf("New(anthropic) error = %v", err)
	}
	if p.Type() != "anthropic" {
		t.Errorf("Type() = %q", p.Type())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New("x", config.ProviderConfig{Type: "openai"}); err == nil {
		t.Error("New() accepted a provider without an API key")
	}
	if _, err := New("x", config.ProviderConfig{Type: "cohere", APIKey: "k"}); err == nil {
		t.Error("New() accepted an unknown provider type")
	}
}

// -----------------------------------------------------------------------------
// OpenAI adapter
// -----------------------------------------------------------------------------

func TestOpenAIComplete(t *testing.T) {
	var gotAuth string
	var gotReq openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "looks fine"}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3},
		})
	}))
	defer srv.Close()

	p, err := New("gpt", config.ProviderConfig{
		Type: "openai", APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	resp, err := p.Complete(context.Background(), &Request{System: "review", Prompt: "diff"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "looks fine" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 3 {
		t.Errorf("usage = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "gpt-4o" || len(gotReq.Messages) != 2 {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", gotReq.Messages[0].Role)
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	p, _ := New("gpt", config.ProviderConfig{Type: "openai", APIKey: "k", BaseURL: srv.URL})
	defer p.Close()

	_, err := p.Complete(context.Background(), &Request{Prompt: "diff"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests || apiErr.Message != "rate limited" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !apiErr.Retryable() {
		t.Error("429 should be retryable")
	}
}

// -----------------------------------------------------------------------------
// Anthropic adapter
// -----------------------------------------------------------------------------

func TestAnthropicComplete(t *testing.T) {
	var gotKey, gotVersion string
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-sonnet-4",
			"content": []map[string]string{
				{"type": "text", "text": "two issues found"},
			},
			"usage": map[string]int{"input_tokens": 20, "output_tokens": 5},
		})
	}))
	defer srv.Close()

	p, err := New("claude", config.ProviderConfig{
		Type: "anthropic", APIKey: "sk-ant-test", BaseURL: srv.URL, Model: "claude-sonnet-4",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	resp, err := p.Complete(context.Background(), &Request{System: "review", Prompt: "diff"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "two issues found" {
		t.Errorf("Content = %q", resp.Content)
	}
	if gotKey != "sk-ant-test" || gotVersion != anthropicVersion {
		t.Errorf("headers = %q / %q", gotKey, gotVersion)
	}
	if gotReq.System != "review" || gotReq.MaxTokens != defaultMaxTokens {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestAnthropicServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, _ := New("claude", config.ProviderConfig{Type: "anthropic", APIKey: "k", BaseURL: srv.URL})
	defer p.Close()

	_, err := p.Complete(context.Background(), &Request{Prompt: "diff"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() error = %v, want *APIError", err)
	}
	if !apiErr.Retryable() {
		t.Error("503 should be retryable")
	}
}

// -----------------------------------------------------------------------------
// Context handling
// -----------------------------------------------------------------------------

func TestCompleteRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	p, _ := New("gpt", config.ProviderConfig{Type: "openai", APIKey: "k", BaseURL: srv.URL})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Complete(ctx, &Request{Prompt: "diff"})
	if err == nil {
		t.Fatal("Complete() succeeded despite cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Errorf("Complete() blocked past context deadline")
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	for _, typ := range []string{"openai", "anthropic"} {
		p, _ := New(typ, config.ProviderConfig{Type: typ, APIKey: "k", BaseURL: srv.URL})
		if err := p.HealthCheck(context.Background()); err != nil {
			t.Errorf("%s HealthCheck() error = %v", typ, err)
		}
		p.Close()
	}
}
