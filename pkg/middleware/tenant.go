package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/cache"
	"karaoke-booking/pkg/metrics"
	"karaoke-booking/pkg/utils"

	"go.uber.org/zap"
)

const (
	TenantIDHeader = "X-Tenant-Id"
	TenantIDQuery  = "tenant_id"
)

// Tenant resolves the tenant of every request it wraps and binds it, plus
// the authenticated principal if any, to the request context. Requests
// without a usable tenant never reach the handler.
func Tenant(tenants usecase.TenantService, counter cache.UsageCounter, baseDomain string, logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.With(zap.String("middleware", "tenant"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hints := usecase.ResolveHints{
				Subdomain: Subdomain(r.Host, baseDomain),
				TenantID:  r.Header.Get(TenantIDHeader),
				Bearer:    BearerToken(r),
			}
			if hints.TenantID == "" {
				hints.TenantID = r.URL.Query().Get(TenantIDQuery)
			}

			res, err := tenants.Resolve(r.Context(), hints)
			if err != nil {
				switch {
				case errors.Is(err, usecase.ErrUnauthorized):
					metrics.RecordTenantRejection("unauthorized")
					log.Warn("Invalid credential", zap.Error(err), zap.String("path", r.URL.Path))
					utils.ResponseUnauthorized(w, "Invalid or expired credentials")
				case errors.Is(err, usecase.ErrForbidden):
					metrics.RecordTenantRejection("tenant_mismatch")
					log.Warn("Credential used against another tenant", zap.Error(err), zap.String("host", r.Host))
					utils.ResponseForbidden(w, "Credentials do not belong to this tenant")
				default:
					log.Error("Tenant resolution failed", zap.Error(err))
					utils.ResponseInternalError(w, "Internal server error")
				}
				return
			}

			switch res.Kind {
			case usecase.Unresolved:
				metrics.RecordTenantRejection("unresolved")
				utils.ResponseBadRequest(w, usecase.ErrTenantRequired.Error(), map[string]string{
					"tenant": "use a tenant subdomain, the " + TenantIDHeader + " header or a tenant credential",
				})
				return
			case usecase.Inactive:
				metrics.RecordTenantRejection(string(res.Tenant.Status))
				log.Warn("Request for inactive tenant",
					zap.String("tenant_id", res.Tenant.ID.String()),
					zap.String("status", string(res.Tenant.Status)),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, usecase.ErrTenantInactive.Error())
				return
			}

			if counter != nil {
				if err := counter.IncrAPICalls(r.Context(), res.Tenant.ID, time.Now()); err != nil {
					log.Warn("Failed to count api call", zap.Error(err), zap.String("tenant_id", res.Tenant.ID.String()))
				}
			}

			ctx := utils.SetTenantContext(r.Context(), res.Tenant.ID)
			if res.Principal != nil {
				ctx = utils.SetPrincipalContext(ctx, res.Principal)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subdomain returns the single label in front of baseDomain, e.g. "acme"
// for "acme.example.com:8080". Anything else yields "".
func Subdomain(host, baseDomain string) string {
	if baseDomain == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	suffix := "." + strings.ToLower(baseDomain)

	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	label := strings.TrimSuffix(host, suffix)
	if label == "" || strings.Contains(label, ".") {
		return ""
	}
	return label
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
