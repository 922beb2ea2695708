package usecase

import (
	"context"
	"fmt"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
)

type ResolutionKind int

const (
	Unresolved ResolutionKind = iota
	Resolved
	Inactive
)

func (k ResolutionKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Inactive:
		return "inactive"
	default:
		return "unresolved"
	}
}

// Where the tenant of a request came from.
const (
	SourceSubdomain = "subdomain"
	SourceHeader    = "header"
	SourceAPIKey    = "api_key"
	SourceSession   = "session"
)

// ResolveHints is everything a request offers for finding its tenant.
type ResolveHints struct {
	Subdomain string
	TenantID  string // X-Tenant-Id header or tenant_id query
	Bearer    string // Authorization: Bearer value, API key or JWT
}

type Resolution struct {
	Kind      ResolutionKind
	Tenant    *entity.Tenant
	Source    string
	Principal *utils.Principal
}

// TenantLookup is the data ResolveTenant needs. Credential checks return an
// error wrapping ErrUnauthorized for anything they reject.
type TenantLookup interface {
	TenantBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error)
	TenantByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error)
	AuthenticateAPIKey(ctx context.Context, key string) (*utils.Principal, error)
	AuthenticateSession(ctx context.Context, token string) (*utils.Principal, error)
}

// ResolveTenant finds the tenant of a request. First match wins:
// subdomain, explicit tenant id, API key, login session.
//
// A tenant found by subdomain or id that is not active yields Inactive
// before any credential is looked at. A credential bound to another tenant
// than the one named by host or header is ErrForbidden.
func ResolveTenant(ctx context.Context, lookup TenantLookup, hints ResolveHints) (Resolution, error) {
	var (
		tenant *entity.Tenant
		source string
	)

	if hints.Subdomain != "" {
		t, err := lookup.TenantBySubdomain(ctx, hints.Subdomain)
		if err != nil {
			return Resolution{}, err
		}
		if t != nil {
			tenant, source = t, SourceSubdomain
		}
	}

	if tenant == nil && hints.TenantID != "" {
		// a malformed id names no tenant, same as an unknown one
		if id, err := uuid.Parse(hints.TenantID); err == nil {
			t, err := lookup.TenantByID(ctx, id)
			if err != nil {
				return Resolution{}, err
			}
			if t != nil {
				tenant, source = t, SourceHeader
			}
		}
	}

	if tenant != nil && !tenant.IsActive() {
		return Resolution{Kind: Inactive, Tenant: tenant, Source: source}, nil
	}

	var principal *utils.Principal
	if hints.Bearer != "" {
		var (
			err        error
			credSource string
		)
		if utils.IsAPIKey(hints.Bearer) {
			principal, err = lookup.AuthenticateAPIKey(ctx, hints.Bearer)
			credSource = SourceAPIKey
		} else {
			principal, err = lookup.AuthenticateSession(ctx, hints.Bearer)
			credSource = SourceSession
		}
		if err != nil {
			return Resolution{}, err
		}

		if tenant != nil && principal.TenantID != tenant.ID {
			return Resolution{}, fmt.Errorf("credential belongs to another tenant: %w", ErrForbidden)
		}

		if tenant == nil {
			t, err := lookup.TenantByID(ctx, principal.TenantID)
			if err != nil {
				return Resolution{}, err
			}
			if t == nil {
				return Resolution{}, fmt.Errorf("credential tenant %s no longer exists: %w", principal.TenantID, ErrUnauthorized)
			}
			tenant, source = t, credSource
		}
	}

	if tenant == nil {
		return Resolution{Kind: Unresolved}, nil
	}
	if !tenant.IsActive() {
		return Resolution{Kind: Inactive, Tenant: tenant, Source: source, Principal: principal}, nil
	}
	return Resolution{Kind: Resolved, Tenant: tenant, Source: source, Principal: principal}, nil
}
