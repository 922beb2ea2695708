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

// ErrSubdomainTaken is returned by Create when the subdomain is already registered.
var ErrSubdomainTaken = errors.New("subdomain already taken")

type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TenantStatus, at time.Time) error
	MergeSettings(ctx context.Context, id uuid.UUID, set map[string]any, remove []string, at time.Time) (*entity.Tenant, error)
}

type tenantRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTenantRepository(db database.Querier, log *zap.Logger) TenantRepository {
	return &tenantRepository{
		db:  db,
		log: log.With(zap.String("repository", "tenant")),
	}
}

const tenantColumns = `id, name, subdomain, plan, status, settings, created_at, updated_at`

func scanTenant(row rowScanner) (*entity.Tenant, error) {
	var tenant entity.Tenant
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&tenant.Plan,
		&tenant.Status,
		&tenant.Settings,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *entity.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, subdomain, plan, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	settings := tenant.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	_, err := r.db.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Subdomain,
		tenant.Plan,
		tenant.Status,
		settings,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	if database.IsUniqueViolation(err) {
		return ErrSubdomainTaken
	}
	if err != nil {
		r.log.Error("Failed to create tenant",
			zap.Error(err),
			zap.String("subdomain", tenant.Subdomain),
		)
		return fmt.Errorf("create tenant %s: %w", tenant.Subdomain, err)
	}

	return nil
}

func (r *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	tenant, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tenant by ID",
			zap.Error(err),
			zap.String("tenant_id", id.String()),
		)
		return nil, fmt.Errorf("find tenant by ID %s: %w", id.String(), err)
	}

	return tenant, nil
}

func (r *tenantRepository) FindBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain = $1`

	tenant, err := scanTenant(r.db.QueryRow(ctx, query, subdomain))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tenant by subdomain",
			zap.Error(err),
			zap.String("subdomain", subdomain),
		)
		return nil, fmt.Errorf("find tenant by subdomain %s: %w", subdomain, err)
	}

	return tenant, nil
}

func (r *tenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TenantStatus, at time.Time) error {
	query := `UPDATE tenants SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status, at)
	if err != nil {
		r.log.Error("Failed to update tenant status",
			zap.Error(err),
			zap.String("tenant_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update tenant %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant %s not found", id.String())
	}

	return nil
}

// MergeSettings applies set and remove to the settings blob in one statement,
// so concurrent merges of different keys never overwrite each other.
// Returns nil, nil when the tenant does not exist.
func (r *tenantRepository) MergeSettings(ctx context.Context, id uuid.UUID, set map[string]any, remove []string, at time.Time) (*entity.Tenant, error) {
	query := `
		UPDATE tenants
		SET settings = (settings || $2::jsonb) - $3::text[], updated_at = $4
		WHERE id = $1
		RETURNING ` + tenantColumns

	if set == nil {
		set = map[string]any{}
	}
	if remove == nil {
		remove = []string{}
	}

	tenant, err := scanTenant(r.db.QueryRow(ctx, query, id, set, remove, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to merge tenant settings",
			zap.Error(err),
			zap.String("tenant_id", id.String()),
		)
		return nil, fmt.Errorf("merge tenant %s settings: %w", id.String(), err)
	}

	return tenant, nil
}
