package logging

import "regexp"

// Redactor removes credential material from log field values.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern pairs a compiled regex with its replacement.
type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			// Bearer tokens (JWTs and opaque tokens passed via Authorization)
			{
				regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/-]+=*`),
				replacement: "Bearer ***",
			},
			// Compact JWS: three dot-separated base64url segments
			{
				regex:       regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\b`),
				replacement: "***jwt***",
			},
			// Provider API keys (OpenAI/Anthropic style prefixes)
			{
				regex:       regexp.MustCompile(`\b(sk|sk-ant)-[A-Za-z0-9_-]{8,}\b`),
				replacement: "$1-***",
			},
		},
	}
}

// Redact applies all patterns to the given string.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}
