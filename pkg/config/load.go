package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names for secret material.
const (
	// EnvSigningSecret carries the token signing secret.
	EnvSigningSecret = "JANUS_SIGNING_SECRET"

	// EnvOpenAIKey carries the OpenAI API key.
	EnvOpenAIKey = "OPENAI_API_KEY"

	// EnvAnthropicKey carries the Anthropic API key.
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// Load reads the YAML config at path, overlays environment secrets,
// applies defaults, and validates the result.
//
// A missing file is not an error: defaults plus environment are used,
// which is enough for a development setup with the memory backends.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays secret material from the environment.
func (c *Config) applyEnv() {
	if secret := os.Getenv(EnvSigningSecret); secret != "" {
		c.Auth.SigningSecret = secret
	}

	for name, p := range c.Providers {
		switch strings.ToLower(p.Type) {
		case "openai":
			if key := os.Getenv(EnvOpenAIKey); key != "" {
				p.APIKey = key
			}
		case "anthropic":
			if key := os.Getenv(EnvAnthropicKey); key != "" {
				p.APIKey = key
			}
		}
		c.Providers[name] = p
	}
}

// DefaultProvider returns the name of the provider marked default, or
// the only configured provider when exactly one exists.
func (c *Config) DefaultProvider() string {
	for name, p := range c.Providers {
		if p.Default {
			return name
		}
	}
	if len(c.Providers) == 1 {
		for name := range c.Providers {
			return name
		}
	}
	return ""
}
