package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gatehouse-hq/janus/pkg/config"
)

// Provider is a chat completion client for one LLM backend.
//
// Implementations must respect context cancellation and return
// promptly when the context is done.
type Provider interface {
	// Complete sends a completion request and returns the normalized
	// response.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// HealthCheck verifies the backend is reachable with a lightweight
	// request. A nil return means healthy.
	HealthCheck(ctx context.Context) error

	// Name returns the configured provider name (config key).
	Name() string

	// Type returns the provider type ("openai" or "anthropic").
	Type() string

	// Close releases idle connections. The provider must not be used
	// afterwards.
	Close() error
}

// Request is a provider-agnostic completion request.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Prompt is the user message content.
	Prompt string

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens caps the response length. Zero uses the provider
	// default.
	MaxTokens int
}

// Response is a provider-agnostic completion response.
type Response struct {
	// Content is the assistant message text.
	Content string

	// Model is the model that produced the response.
	Model string

	// InputTokens and OutputTokens report usage when the backend
	// provides it.
	InputTokens  int
	OutputTokens int
}

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.Status, e.Message)
}

// Retryable reports whether the failure is transient (rate limiting or
// a server-side error) rather than a caller mistake.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// New builds a provider from its config entry. name is the config key
// and becomes the provider's Name.
func New(name string, cfg config.ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider %s: API key is not set", name)
	}

	switch strings.ToLower(cfg.Type) {
	case "openai":
		return newOpenAI(name, cfg), nil
	case "anthropic":
		return newAnthropic(name, cfg), nil
	default:
		return nil, fmt.Errorf("provider %s: unknown type %q", name, cfg.Type)
	}
}

// newHTTPClient builds the pooled client shared by both adapters.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
		Timeout: timeout,
	}
}

// closeIdle shuts down a client's idle connections.
func closeIdle(c *http.Client) {
	if t, ok := c.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}
