// Janus is an API gate service for AI code review traffic.
//
// It sits in front of the review providers and enforces the three
// protection layers every request passes through:
//   - Sliding-window rate limiting per user, IP, and API key
//   - Per-provider circuit breakers around the LLM backends
//   - Role-based access control with signed identity tokens
//
// Usage:
//
//	# Start the gateway with default configuration
//	janus run
//
//	# Start with a custom configuration file
//	janus run --config /etc/janus/config.yaml
//
//	# Mint an operator token
//	janus token mint --user alice --role admin
//
//	# Inspect a token
//	janus token inspect --token "eyJ..."
//
//	# Show version information
//	janus version
package main

func main() {
	Execute()
}
