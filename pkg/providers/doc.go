// Package providers contains minimal chat completion clients for the
// LLM backends that perform code reviews.
//
// # Overview
//
// A Provider wraps one upstream API (OpenAI or Anthropic) behind a
// common Complete/HealthCheck surface. The clients are deliberately
// thin: retries, health routing, and failure isolation live in the
// circuit breaker wrapping each provider, not here. A call either
// succeeds or returns an error for the breaker to count.
//
// # Usage
//
//	p, err := providers.New("claude", cfg)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	resp, err := p.Complete(ctx, &providers.Request{
//		System: reviewSystemPrompt,
//		Prompt: diff,
//	})
package providers
