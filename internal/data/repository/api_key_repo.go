package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type APIKeyRepository interface {
	Create(ctx context.Context, key *entity.APIKey) error
	// FindByPrefix runs before any tenant is resolved.
	FindByPrefix(ctx context.Context, prefix string) (*entity.APIKey, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*entity.APIKey, error)
	Revoke(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type apiKeyRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewAPIKeyRepository(db database.Querier, log *zap.Logger) APIKeyRepository {
	return &apiKeyRepository{
		db:  db,
		log: log.With(zap.String("repository", "api_key")),
	}
}

const apiKeyColumns = `id, tenant_id, name, prefix, secret_hash, last_used_at, expires_at, revoked_at, created_at`

func scanAPIKey(row rowScanner) (*entity.APIKey, error) {
	var key entity.APIKey
	err := row.Scan(
		&key.ID,
		&key.TenantID,
		&key.Name,
		&key.Prefix,
		&key.SecretHash,
		&key.LastUsedAt,
		&key.ExpiresAt,
		&key.RevokedAt,
		&key.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	query := `
		INSERT INTO api_keys (id, tenant_id, name, prefix, secret_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		key.ID,
		key.TenantID,
		key.Name,
		key.Prefix,
		key.SecretHash,
		key.ExpiresAt,
		key.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create api key",
			zap.Error(err),
			zap.String("tenant_id", key.TenantID.String()),
			zap.String("prefix", key.Prefix),
		)
		return fmt.Errorf("create api key %s: %w", key.Prefix, err)
	}

	return nil
}

func (r *apiKeyRepository) FindByPrefix(ctx context.Context, prefix string) (*entity.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE prefix = $1`

	key, err := scanAPIKey(r.db.QueryRow(ctx, query, prefix))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find api key",
			zap.Error(err),
			zap.String("prefix", prefix),
		)
		return nil, fmt.Errorf("find api key %s: %w", prefix, err)
	}

	return key, nil
}

func (r *apiKeyRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*entity.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE tenant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		r.log.Error("Failed to list api keys",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return nil, fmt.Errorf("list api keys for tenant %s: %w", tenantID.String(), err)
	}
	defer rows.Close()

	var keys []*entity.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			r.log.Error("Failed to scan api key row", zap.Error(err))
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (r *apiKeyRepository) Revoke(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	query := `UPDATE api_keys SET revoked_at = $3 WHERE tenant_id = $1 AND id = $2 AND revoked_at IS NULL`

	result, err := r.db.Exec(ctx, query, tenantID, id, at)
	if err != nil {
		r.log.Error("Failed to revoke api key",
			zap.Error(err),
			zap.String("api_key_id", id.String()),
		)
		return fmt.Errorf("revoke api key %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("api key %s not found", id.String())
	}

	return nil
}

func (r *apiKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		r.log.Warn("Failed to touch api key", zap.Error(err), zap.String("api_key_id", id.String()))
		return fmt.Errorf("touch api key %s: %w", id.String(), err)
	}

	return nil
}
