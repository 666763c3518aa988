package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gatehouse-hq/janus/pkg/config"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"

	// defaultMaxTokens applies when the request does not set one;
	// the Anthropic API requires the field.
	defaultMaxTokens = 4096
)

// Anthropic is a messages API client for the Anthropic API.
type Anthropic struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
	base   string
}

func newAnthropic(name string, cfg config.ProviderConfig) *Anthropic {
	base := cfg.BaseURL
	if base == "" {
		base = defaultAnthropicBaseURL
	}
	return &Anthropic{
		name:   name,
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		base:   base,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a messages request.
func (p *Anthropic) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider %s: request failed: %w", p.name, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("provider %s: reading response: %w", p.name, err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil && httpResp.StatusCode < 300 {
		return nil, fmt.Errorf("provider %s: decoding response: %w", p.name, err)
	}

	if httpResp.StatusCode >= 300 {
		msg := httpResp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, &APIError{Provider: p.name, Status: httpResp.StatusCode, Message: msg}
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("provider %s: response has no text content", p.name)
	}

	return &Response{
		Content:      text,
		Model:        parsed.Model,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}

// HealthCheck lists models as a cheap reachability probe.
func (p *Anthropic) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/models", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("provider %s: health check failed: %w", p.name, err)
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(httpResp.Body, 1<<20))

	if httpResp.StatusCode >= 300 {
		return &APIError{Provider: p.name, Status: httpResp.StatusCode, Message: httpResp.Status}
	}
	return nil
}

// Name returns the configured provider name.
func (p *Anthropic) Name() string { return p.name }

// Type returns "anthropic".
func (p *Anthropic) Type() string { return "anthropic" }

// Close releases idle connections.
func (p *Anthropic) Close() error {
	closeIdle(p.client)
	return nil
}
