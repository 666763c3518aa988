package rbac

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted signing secret length.
const MinSecretLength = 32

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// placeholderSecrets are values that must never be accepted as a real
// signing secret, however long they are.
var placeholderSecrets = map[string]struct{}{
	"your-secret-key":                  {},
	"changeme":                         {},
	"secret":                           {},
	"please-change-this-secret-value!": {},
}

// TokenPayload is the verified content of an identity token.
type TokenPayload struct {
	// UserID identifies the token's subject.
	UserID string

	// Role is the subject's role at issuance time.
	Role Role

	// Permissions is the permission set embedded at issuance. It is
	// exactly the static set for Role and is never re-derived during
	// verification.
	Permissions []Permission

	// IssuedAt is when the token was minted.
	IssuedAt time.Time

	// ExpiresAt is when the token stops verifying.
	ExpiresAt time.Time
}

// HasPermission reports whether the payload's embedded set contains perm.
func (p *TokenPayload) HasPermission(perm Permission) bool {
	for _, have := range p.Permissions {
		if have == perm {
			return true
		}
	}
	return false
}

// claims is the JWT claim layout for identity tokens.
type claims struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// ManagerConfig contains optional Manager settings.
type ManagerConfig struct {
	// Issuer is placed in the token's iss claim. Default: "janus".
	Issuer string

	// TokenTTL is the default token lifetime for CreateToken.
	// Default: 24h.
	TokenTTL time.Duration
}

// Manager issues and verifies identity tokens. It holds only the
// immutable signing secret and needs no synchronization.
type Manager struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

// NewManager creates a Manager after validating the signing secret and
// the role table.
//
// The secret must be at least MinSecretLength characters and must not
// be a known placeholder; both are configuration errors that fail
// construction rather than being silently defaulted.
func NewManager(secret string, cfg ManagerConfig) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters, got %d",
			ErrWeakSecret, MinSecretLength, len(secret))
	}
	if _, placeholder := placeholderSecrets[secret]; placeholder {
		return nil, fmt.Errorf("%w: placeholder value rejected", ErrWeakSecret)
	}

	if err := validateRoleTable(); err != nil {
		return nil, fmt.Errorf("role table: %w", err)
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "janus"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	return &Manager{
		secret:   []byte(secret),
		issuer:   cfg.Issuer,
		tokenTTL: cfg.TokenTTL,
	}, nil
}

// CreateToken mints a token for userID with the configured default
// lifetime.
func (m *Manager) CreateToken(userID string, role Role) (string, error) {
	return m.CreateTokenWithTTL(userID, role, m.tokenTTL)
}

// CreateTokenWithTTL mints a token with an explicit lifetime. A zero or
// negative ttl produces an already-expired token; that is intentional
// and used by tests and short-lived delegation flows.
//
// The role's full permission set is embedded so verification needs no
// table lookup. A token is immutable once issued: changing a user's
// role requires minting a new token.
func (m *Manager) CreateTokenWithTTL(userID string, role Role, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID is required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return "", err
	}

	now := time.Now()
	perms := PermissionsForRole(role)
	permStrings := make([]string, len(perms))
	for i, p := range perms {
		permStrings[i] = string(p)
	}

	c := claims{
		UserID:      userID,
		Role:        string(role),
		Permissions: permStrings,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the token's signature and expiry and returns its
// payload.
//
// Returns ErrTokenExpired when the token verified but has passed its
// expiry, and ErrTokenInvalid for every other failure (bad signature,
// malformed token, wrong algorithm, wrong issuer).
func (m *Manager) VerifyToken(tokenString string) (*TokenPayload, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	role, err := ParseRole(c.Role)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	perms := make([]Permission, 0, len(c.Permissions))
	for _, s := range c.Permissions {
		perm, err := ParsePermission(s)
		if err != nil {
			return nil, ErrTokenInvalid
		}
		perms = append(perms, perm)
	}

	payload := &TokenPayload{
		UserID:      c.UserID,
		Role:        role,
		Permissions: perms,
	}
	if c.IssuedAt != nil {
		payload.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		payload.ExpiresAt = c.ExpiresAt.Time
	}
	return payload, nil
}

// HasPermission reports whether the token carries perm.
//
// All verification failures, expired and invalid alike, collapse to
// false here: this call site only needs a boolean. Callers that must
// tell the two apart use VerifyToken directly.
func (m *Manager) HasPermission(tokenString string, perm Permission) bool {
	payload, err := m.VerifyToken(tokenString)
	if err != nil {
		return false
	}
	return payload.HasPermission(perm)
}
