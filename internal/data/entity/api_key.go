package entity

import (
	"time"

	"github.com/google/uuid"
)

type APIKey struct {
	BaseSimple
	TenantID   uuid.UUID  `db:"tenant_id"`
	Name       string     `db:"name"`
	Prefix     string     `db:"prefix"`
	SecretHash string     `db:"secret_hash"`
	LastUsedAt *time.Time `db:"last_used_at"`
	ExpiresAt  *time.Time `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
}

// Usable reports whether the key may still authenticate requests.
func (k *APIKey) Usable(now time.Time) bool {
	if k.RevokedAt != nil {
		return false
	}
	return k.ExpiresAt == nil || now.Before(*k.ExpiresAt)
}
