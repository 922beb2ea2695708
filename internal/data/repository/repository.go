package repository

import (
	"context"
	"errors"

	"karaoke-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrBookingOverlap is returned when the database rejects a booking through
// the bookings_no_overlap exclusion constraint.
var ErrBookingOverlap = errors.New("booking overlaps an existing booking")

// ErrPriceOutOfRange is returned when a total does not fit the price column.
var ErrPriceOutOfRange = errors.New("booking price out of range")

// Repository holds the repositories usable before a tenant is known,
// plus the runner for everything tenant scoped.
type Repository struct {
	Tenant TenantRepository
	APIKey APIKeyRepository
	Tx     TenantTxRunner
}

// Scoped groups the repositories bound to one tenant transaction.
type Scoped struct {
	Tenant        TenantRepository
	Room          RoomRepository
	Booking       BookingRepository
	BusinessHours BusinessHoursRepository
	User          UserRepository
	Session       SessionRepository
	APIKey        APIKeyRepository
}

// TenantTxRunner runs fn inside one transaction bound to tenantID.
// Nothing from fn is visible to other requests unless fn returns nil.
type TenantTxRunner interface {
	WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(s *Scoped) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tenant: NewTenantRepository(db, log),
		APIKey: NewAPIKeyRepository(db, log),
		Tx:     NewTenantTxRunner(db, log),
	}
}

func NewScoped(q database.Querier, log *zap.Logger) *Scoped {
	return &Scoped{
		Tenant:        NewTenantRepository(q, log),
		Room:          NewRoomRepository(q, log),
		Booking:       NewBookingRepository(q, log),
		BusinessHours: NewBusinessHoursRepository(q, log),
		User:          NewUserRepository(q, log),
		Session:       NewSessionRepository(q, log),
		APIKey:        NewAPIKeyRepository(q, log),
	}
}

type tenantTxRunner struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTenantTxRunner(db database.PgxIface, log *zap.Logger) TenantTxRunner {
	return &tenantTxRunner{
		db:  db,
		log: log.With(zap.String("repository", "tenant_tx")),
	}
}

func (r *tenantTxRunner) WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(s *Scoped) error) error {
	return database.WithTenantTx(ctx, r.db, tenantID, func(tx pgx.Tx) error {
		return fn(NewScoped(tx, r.log))
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}
