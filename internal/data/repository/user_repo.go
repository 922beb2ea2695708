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

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.User, error)
}

type userRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewUserRepository(db database.Querier, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// Create inserts a new staff account for a tenant
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, name, password, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.TenantID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("tenant_id", user.TenantID.String()),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, email, name, password, role, is_active, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND id = $2
	`
	return ur.findOne(ctx, query, tenantID, id)
}

func (ur *userRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, email, name, password, role, is_active, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND lower(email) = lower($2)
	`
	return ur.findOne(ctx, query, tenantID, email)
}

func (ur *userRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var user entity.User
	err := ur.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user", zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}
