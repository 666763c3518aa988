// Package config loads and validates Janus configuration.
//
// # Overview
//
// Configuration comes from a YAML file with environment overrides for
// secret material: the token signing secret (JANUS_SIGNING_SECRET) and
// provider API keys (OPENAI_API_KEY, ANTHROPIC_API_KEY) are read from
// the environment so they never live in the config file.
//
// The package is split the usual way:
//
//   - config.go: the configuration structs
//   - defaults.go: default values
//   - load.go: file loading and env overrides
//   - validate.go: startup validation
//   - watch.go: fsnotify-based hot reload of rate limit settings
//
// # Hot Reload
//
// Rate limit settings can be changed without a restart: a Watcher
// observes the config file and invokes a callback with the re-loaded
// configuration on every change. Only rate limits are applied live;
// all other settings require a restart.
package config
