package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gatehouse-hq/janus/pkg/audit"
	"gatehouse-hq/janus/pkg/rbac"
	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// Auth verifies the Bearer token on each request and stores the
// verified payload in the context. Requests without a valid token get
// a 401; expired tokens get a distinct message so clients know to
// refresh rather than re-authenticate.
func Auth(manager *rbac.Manager, recorder *audit.Recorder, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, r, http.StatusUnauthorized,
					"authentication_error", "missing bearer token")
				return
			}

			payload, err := manager.VerifyToken(token)
			if err != nil {
				recorder.Record(r.Context(), &audit.Record{
					RequestID: GetRequestID(r.Context()),
					Action:    audit.ActionTokenRejected,
					Resource:  r.URL.Path,
					Result:    audit.ResultDenied,
					Detail:    map[string]any{"reason": rejectReason(err)},
				})
				logger.Warn("token rejected",
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
					"reason", rejectReason(err),
				)
				WriteError(w, r, http.StatusUnauthorized,
					"authentication_error", rejectMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects requests whose verified identity lacks
// perm. It must run after Auth.
func RequirePermission(perm rbac.Permission, recorder *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				WriteError(w, r, http.StatusUnauthorized,
					"authentication_error", "missing bearer token")
				return
			}

			if !identity.HasPermission(perm) {
				recorder.Record(r.Context(), &audit.Record{
					RequestID: GetRequestID(r.Context()),
					UserID:    identity.UserID,
					Action:    audit.ActionPermissionDenied,
					Resource:  r.URL.Path,
					Result:    audit.ResultDenied,
					Detail: map[string]any{
						"permission": string(perm),
						"role":       string(identity.Role),
					},
				})
				WriteError(w, r, http.StatusForbidden,
					"permission_error", (&rbac.PermissionDeniedError{Permission: perm}).Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}

func rejectReason(err error) string {
	if errors.Is(err, rbac.ErrTokenExpired) {
		return "expired"
	}
	return "invalid"
}

func rejectMessage(err error) string {
	if errors.Is(err, rbac.ErrTokenExpired) {
		return "token expired"
	}
	return "invalid token"
}
