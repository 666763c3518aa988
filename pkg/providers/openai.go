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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI is a chat completions client for the OpenAI API.
type OpenAI struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
	base   string
}

func newOpenAI(name string, cfg config.ProviderConfig) *OpenAI {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	return &OpenAI{
		name:   name,
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		base:   base,
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a chat completion request.
func (p *OpenAI) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	msgs := make([]openAIMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openAIMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, openAIMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(openAIRequest{
		Model:     model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider %s: request failed: %w", p.name, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("provider %s: reading response: %w", p.name, err)
	}

	var parsed openAIResponse
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

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("provider %s: response has no choices", p.name)
	}

	return &Response{
		Content:      parsed.Choices[0].Message.Content,
		Model:        parsed.Model,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}

// HealthCheck lists models as a cheap reachability probe.
func (p *OpenAI) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/models", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

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
func (p *OpenAI) Name() string { return p.name }

// Type returns "openai".
func (p *OpenAI) Type() string { return "openai" }

// Close releases idle connections.
func (p *OpenAI) Close() error {
	closeIdle(p.client)
	return nil
}
