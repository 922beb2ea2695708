package repository

import (
	"context"
	"errors"
	"fmt"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindValidSession(ctx context.Context, tenantID, id uuid.UUID) (*entity.Session, error)
	Revoke(ctx context.Context, tenantID, id uuid.UUID) error
	CleanExpiredSessions(ctx context.Context, tenantID uuid.UUID) error
}

type sessionRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSessionRepository(db database.Querier, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO sessions (id, tenant_id, user_id, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.TenantID,
		session.UserID,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create session",
			zap.Error(err),
			zap.String("user_id", session.UserID.String()),
		)
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) FindValidSession(ctx context.Context, tenantID, id uuid.UUID) (*entity.Session, error) {
	query := `
		SELECT id, tenant_id, user_id, user_agent, ip_address, expires_at, revoked_at, created_at
		FROM sessions
		WHERE tenant_id = $1
		  AND id = $2
		  AND revoked_at IS NULL
		  AND expires_at > NOW()
	`

	var session entity.Session
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(
		&session.ID,
		&session.TenantID,
		&session.UserID,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid session",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND revoked_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		r.log.Error("Failed to revoke session",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found or already revoked")
	}

	return nil
}

func (r *sessionRepository) CleanExpiredSessions(ctx context.Context, tenantID uuid.UUID) error {
	query := `
		DELETE FROM sessions
		WHERE tenant_id = $1 AND expires_at < NOW() - INTERVAL '7 days'
	`

	_, err := r.db.Exec(ctx, query, tenantID)
	if err != nil {
		r.log.Error("Failed to clean expired sessions",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return fmt.Errorf("failed to clean sessions: %w", err)
	}

	return nil
}
