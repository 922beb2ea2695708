package middleware

import (
	"crypto/subtle"
	"net/http"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/pkg/utils"

	"go.uber.org/zap"
)

const PlatformKeyHeader = "X-Platform-Key"

// RequireAuth lets through requests that carried a valid login session or
// API key. Must run after Tenant.
func RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetPrincipalFromContext(r.Context()); !ok {
				logger.Warn("Unauthenticated access attempt",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner only admits login sessions of the tenant owner. API keys
// cannot manage keys or delete the tenant.
func RequireOwner(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := utils.GetPrincipalFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if p.Kind != utils.PrincipalSession || p.Role != string(entity.RoleOwner) {
				logger.Warn("Owner check: access denied",
					zap.String("tenant_id", p.TenantID.String()),
					zap.String("kind", string(p.Kind)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Owner access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PlatformKey guards operator endpoints with a static key. An empty key
// disables them.
func PlatformKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(PlatformKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				logger.Warn("Platform key rejected", zap.String("path", r.URL.Path), zap.String("ip", r.RemoteAddr))
				utils.ResponseForbidden(w, "Platform access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
