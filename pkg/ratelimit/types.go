package ratelimit

import "time"

// Scope names the built-in limiting scopes.
type Scope string

const (
	// ScopeUser limits by authenticated user ID.
	ScopeUser Scope = "user"

	// ScopeIP limits by client IP address (hashed before storage).
	ScopeIP Scope = "ip"

	// ScopeAPIKey limits by API key (hashed before storage).
	ScopeAPIKey Scope = "api_key"
)

// Key prefixes for the built-in scopes. Store keys have the form
// "{prefix}:{identifier}".
const (
	userKeyPrefix   = "user_limit"
	ipKeyPrefix     = "ip_limit"
	apiKeyKeyPrefix = "api_key_limit"
)

// Decision is the outcome of a single rate limit check.
// It is a value, not an error: denial is an expected, frequent outcome.
type Decision struct {
	// Allowed indicates whether the request is permitted.
	Allowed bool

	// Limit is the configured maximum for the window.
	Limit int

	// Remaining is how many requests remain in the window after this
	// check. Zero when denied.
	Remaining int

	// ResetAt is when the identifier becomes eligible again. On denial
	// this is the oldest surviving entry's timestamp plus the window;
	// on admission it is the current time plus the window.
	ResetAt time.Time

	// Window is the configured window duration, for Retry-After headers.
	Window time.Duration

	// FailedOpen is set when the counting store was unreachable and the
	// request was admitted by the fail-open policy rather than a real
	// count. Callers should log this distinctly from a true allow.
	FailedOpen bool
}

// ScopeLimit configures one scope's limit.
type ScopeLimit struct {
	// MaxRequests is the maximum admitted requests per window.
	MaxRequests int `yaml:"max_requests"`

	// Window is the trailing window duration.
	Window time.Duration `yaml:"window"`
}

// Config contains per-scope limits for the built-in scope wrappers.
// Zero-valued fields fall back to the defaults below.
type Config struct {
	// User is the per-user limit. Default: 60 requests / 60s.
	User ScopeLimit `yaml:"user"`

	// IP is the per-IP limit. Default: 100 requests / 60s.
	IP ScopeLimit `yaml:"ip"`

	// APIKey is the per-API-key limit. Default: 1000 requests / 1h.
	APIKey ScopeLimit `yaml:"api_key"`

	// StoreTimeout bounds each store round-trip. A store slower than
	// this is treated as unavailable and the check fails open.
	// Default: 1s.
	StoreTimeout time.Duration `yaml:"store_timeout"`
}

// Default scope limits, matching the service's documented quotas.
var (
	DefaultUserLimit   = ScopeLimit{MaxRequests: 60, Window: time.Minute}
	DefaultIPLimit     = ScopeLimit{MaxRequests: 100, Window: time.Minute}
	DefaultAPIKeyLimit = ScopeLimit{MaxRequests: 1000, Window: time.Hour}
)

// DefaultStoreTimeout bounds store round-trips when Config.StoreTimeout
// is unset.
const DefaultStoreTimeout = time.Second

// withDefaults returns cfg with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.User.MaxRequests <= 0 || c.User.Window <= 0 {
		c.User = DefaultUserLimit
	}
	if c.IP.MaxRequests <= 0 || c.IP.Window <= 0 {
		c.IP = DefaultIPLimit
	}
	if c.APIKey.MaxRequests <= 0 || c.APIKey.Window <= 0 {
		c.APIKey = DefaultAPIKeyLimit
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	return c
}
