package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gatehouse-hq/janus/pkg/audit"
	"gatehouse-hq/janus/pkg/ratelimit"
	"gatehouse-hq/janus/pkg/rbac"
	"gatehouse-hq/janus/pkg/telemetry/logging"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRecorder() *audit.Recorder {
	return audit.NewRecorder(audit.NewMemoryStore(100), audit.DefaultRetention, logging.NewNop())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func auditRecords(t *testing.T, rec *audit.Recorder, action audit.Action) []*audit.Record {
	t.Helper()
	records, err := rec.Store().Query(context.Background(), audit.QueryFilter{Action: action})
	if err != nil {
		t.Fatalf("querying audit store: %v", err)
	}
	return records
}

// -----------------------------------------------------------------------------
// Request ID
// -----------------------------------------------------------------------------

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("no request ID in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("header %q != context %q", got, seen)
	}
}

func TestRequestIDHonorsClientHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "client-supplied" {
		t.Errorf("request ID = %q, want client-supplied", seen)
	}
}

// -----------------------------------------------------------------------------
// Recovery
// -----------------------------------------------------------------------------

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	h := Recovery(logging.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"]["type"] != "internal_error" {
		t.Errorf("error type = %q", body["error"]["type"])
	}
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

func newTestManager(t *testing.T) *rbac.Manager {
	t.Helper()
	m, err := rbac.NewManager(testSecret, rbac.ManagerConfig{})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h := Auth(newTestManager(t), newTestRecorder(), logging.NewNop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	m := newTestManager(t)
	token, err := m.CreateToken("alice", rbac.RoleDeveloper)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	var identity *rbac.TokenPayload
	h := Auth(m, newTestRecorder(), logging.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if identity == nil || identity.UserID != "alice" || identity.Role != rbac.RoleDeveloper {
		t.Errorf("identity = %+v", identity)
	}
}

func TestAuthDistinguishesExpiredFromInvalid(t *testing.T) {
	m := newTestManager(t)
	expired, err := m.CreateTokenWithTTL("bob", rbac.RoleViewer, 0)
	if err != nil {
		t.Fatalf("CreateTokenWithTTL() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	recorder := newTestRecorder()
	h := Auth(m, recorder, logging.NewNop())(okHandler())

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"expired token", expired, "token expired"},
		{"garbage token", "not.a.token", "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			var body map[string]map[string]string
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body["error"]["message"] != tt.message {
				t.Errorf("message = %q, want %q", body["error"]["message"], tt.message)
			}
		})
	}

	if got := auditRecords(t, recorder, audit.ActionTokenRejected); len(got) != 2 {
		t.Errorf("audit records = %d, want 2", len(got))
	}
}

func TestRequirePermissionAllowsAndDenies(t *testing.T) {
	m := newTestManager(t)
	viewerToken, _ := m.CreateToken("carol", rbac.RoleViewer)

	recorder := newTestRecorder()
	h := Auth(m, recorder, logging.NewNop())(
		RequirePermission(rbac.PermissionManageRules, recorder)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+viewerToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer status = %d, want 403", rec.Code)
	}
	records := auditRecords(t, recorder, audit.ActionPermissionDenied)
	if len(records) != 1 || records[0].UserID != "carol" {
		t.Errorf("audit records = %+v", records)
	}

	adminToken, _ := m.CreateToken("dave", rbac.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}

// -----------------------------------------------------------------------------
// Rate limiting
// -----------------------------------------------------------------------------

func newTestLimiter(t *testing.T, cfg ratelimit.Config) *ratelimit.Limiter {
	t.Helper()
	return ratelimit.NewLimiter(ratelimit.NewMemoryStore(), cfg, logging.NewNop(), nil)
}

func TestRateLimitDeniesOverIPLimit(t *testing.T) {
	limiter := newTestLimiter(t, ratelimit.Config{
		IP: ratelimit.ScopeLimit{MaxRequests: 2, Window: time.Minute},
	})
	recorder := newTestRecorder()
	h := RateLimit(limiter, recorder, logging.NewNop())(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", last.Header().Get("Retry-After"))
	}
	if last.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q", last.Header().Get("X-RateLimit-Limit"))
	}
	if len(auditRecords(t, recorder, audit.ActionRateLimited)) != 1 {
		t.Error("denial was not audited")
	}
}

func TestRateLimitChecksUserAfterIP(t *testing.T) {
	limiter := newTestLimiter(t, ratelimit.Config{
		User: ratelimit.ScopeLimit{MaxRequests: 1, Window: time.Minute},
		IP:   ratelimit.ScopeLimit{MaxRequests: 100, Window: time.Minute},
	})
	m := newTestManager(t)
	token, _ := m.CreateToken("erin", rbac.RoleDeveloper)
	recorder := newTestRecorder()

	h := Auth(m, recorder, logging.NewNop())(
		RateLimit(limiter, recorder, logging.NewNop())(okHandler()))

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
	records := auditRecords(t, recorder, audit.ActionRateLimited)
	if len(records) != 1 || records[0].UserID != "erin" || records[0].Resource != "user" {
		t.Errorf("audit records = %+v", records)
	}
}

func TestRateLimitChecksAPIKeyScope(t *testing.T) {
	limiter := newTestLimiter(t, ratelimit.Config{
		IP:     ratelimit.ScopeLimit{MaxRequests: 100, Window: time.Minute},
		APIKey: ratelimit.ScopeLimit{MaxRequests: 1, Window: time.Hour},
	})
	recorder := newTestRecorder()
	h := RateLimit(limiter, recorder, logging.NewNop())(okHandler())

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		req.Header.Set(APIKeyHeader, "integration-key-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
	records := auditRecords(t, recorder, audit.ActionRateLimited)
	if len(records) != 1 || records[0].Resource != "api_key" {
		t.Errorf("audit records = %+v", records)
	}
}

func TestRateLimitSetsHeadersOnAllow(t *testing.T) {
	limiter := newTestLimiter(t, ratelimit.Config{
		IP: ratelimit.ScopeLimit{MaxRequests: 5, Window: time.Minute},
	})
	h := RateLimit(limiter, newTestRecorder(), logging.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Errorf("X-RateLimit-Remaining = %q, want 4", got)
	}
	reset, err := strconv.ParseInt(rec.Header().Get("X-RateLimit-Reset"), 10, 64)
	if err != nil || reset < time.Now().Unix() {
		t.Errorf("X-RateLimit-Reset = %q", rec.Header().Get("X-RateLimit-Reset"))
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"

	if got := clientIP(req); got != "10.0.0.1" {
		t.Errorf("clientIP = %q, want 10.0.0.1", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientIP(req); got != "198.51.100.7" {
		t.Errorf("clientIP = %q, want 198.51.100.7", got)
	}
}
