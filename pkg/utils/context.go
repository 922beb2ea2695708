package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	TenantIDKey  contextKey = "tenant_id"
	PrincipalKey contextKey = "principal"
	RequestIDKey contextKey = "request_id"
)

// PrincipalKind tells how the caller authenticated.
type PrincipalKind string

const (
	PrincipalSession PrincipalKind = "session"
	PrincipalAPIKey  PrincipalKind = "api_key"
)

// Principal is the authenticated caller of a tenant-scoped request.
type Principal struct {
	Kind      PrincipalKind
	TenantID  uuid.UUID
	UserID    uuid.UUID
	SessionID uuid.UUID
	APIKeyID  uuid.UUID
	Role      string
	Token     string
}

func SetTenantContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return tenantID, true
}

func SetPrincipalContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func GetPrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

func SetRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDKey).(string)
	return requestID
}
