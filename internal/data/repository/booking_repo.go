package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error)
	List(ctx context.Context, tenantID uuid.UUID, filter BookingFilter, limit, offset int) ([]*entity.Booking, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) (int64, error)
	UpdateSchedule(ctx context.Context, booking *entity.Booking) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status entity.BookingStatus, at time.Time) error

	// Conflict checking
	LockRoom(ctx context.Context, tenantID, roomID uuid.UUID) error
	HasConflict(ctx context.Context, tenantID, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)

	// Usage queries
	CountByRoom(ctx context.Context, tenantID, roomID uuid.UUID) (int64, error)
	CountCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
}

// BookingFilter narrows List and Count; zero values mean no filter.
type BookingFilter struct {
	RoomID *uuid.UUID
	Status *entity.BookingStatus
	From   *time.Time
	To     *time.Time
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, tenant_id, room_id, customer_name, customer_email, customer_phone,
	start_time, end_time, status, total_price, notes, cancelled_at, created_at, updated_at`

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.TenantID,
		&booking.RoomID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.TotalPrice,
		&booking.Notes,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, tenant_id, room_id, customer_name, customer_email, customer_phone,
		                      start_time, end_time, status, total_price, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.TenantID,
		booking.RoomID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.TotalPrice,
		booking.Notes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if database.IsExclusionViolation(err) {
		r.log.Warn("Booking rejected by overlap constraint",
			zap.String("tenant_id", booking.TenantID.String()),
			zap.String("room_id", booking.RoomID.String()),
		)
		return ErrBookingOverlap
	}
	if database.IsNumericOutOfRange(err) {
		return ErrPriceOutOfRange
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("tenant_id", booking.TenantID.String()),
			zap.String("room_id", booking.RoomID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error) {
	return r.findByID(ctx, tenantID, id, "")
}

// FindByIDForUpdate row-locks the booking until the transaction ends.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error) {
	return r.findByID(ctx, tenantID, id, "FOR UPDATE")
}

func (r *bookingRepository) findByID(ctx context.Context, tenantID, id uuid.UUID, lock string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2 ` + lock

	booking, err := scanBooking(r.db.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

// where builds the WHERE clause shared by List and Count. tenant_id is always $1.
func (f BookingFilter) where(tenantID uuid.UUID) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if f.RoomID != nil {
		args = append(args, *f.RoomID)
		conds = append(conds, fmt.Sprintf("room_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("end_time > $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("start_time < $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

func (r *bookingRepository) List(ctx context.Context, tenantID uuid.UUID, filter BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	where, args := filter.where(tenantID)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY start_time LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list bookings for tenant %s: %w", tenantID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) Count(ctx context.Context, tenantID uuid.UUID, filter BookingFilter) (int64, error) {
	where, args := filter.where(tenantID)
	query := `SELECT COUNT(*) FROM bookings WHERE ` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return 0, fmt.Errorf("count bookings for tenant %s: %w", tenantID.String(), err)
	}

	return count, nil
}

// UpdateSchedule persists a move: room, interval and recomputed price.
func (r *bookingRepository) UpdateSchedule(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET room_id = $3, start_time = $4, end_time = $5, total_price = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2
	`

	result, err := r.db.Exec(ctx, query,
		booking.TenantID,
		booking.ID,
		booking.RoomID,
		booking.StartTime,
		booking.EndTime,
		booking.TotalPrice,
		booking.UpdatedAt,
	)

	if database.IsExclusionViolation(err) {
		r.log.Warn("Booking move rejected by overlap constraint",
			zap.String("booking_id", booking.ID.String()),
			zap.String("room_id", booking.RoomID.String()),
		)
		return ErrBookingOverlap
	}
	if database.IsNumericOutOfRange(err) {
		return ErrPriceOutOfRange
	}
	if err != nil {
		r.log.Error("Failed to update booking schedule",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("update booking %s schedule: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", booking.ID.String())
	}

	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status entity.BookingStatus, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = $3,
		    updated_at = $4,
		    cancelled_at = CASE WHEN $3 = 'cancelled' THEN $4 ELSE cancelled_at END
		WHERE tenant_id = $1 AND id = $2
	`

	result, err := r.db.Exec(ctx, query, tenantID, id, status, at)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

// LockRoom serialises check-then-write for one room of one tenant until the
// surrounding transaction ends.
func (r *bookingRepository) LockRoom(ctx context.Context, tenantID, roomID uuid.UUID) error {
	key := "booking:" + tenantID.String() + ":" + roomID.String()
	if err := database.LockKey(ctx, r.db, key); err != nil {
		r.log.Error("Failed to lock room",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.String("room_id", roomID.String()),
		)
		return err
	}
	return nil
}

// HasConflict reports whether a non-cancelled booking of the room overlaps
// [start, end). excludeID drops the booking being moved from the scan.
func (r *bookingRepository) HasConflict(ctx context.Context, tenantID, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE tenant_id = $1
			  AND room_id = $2
			  AND status <> 'cancelled'
			  AND start_time < $4
			  AND end_time > $3
			  AND ($5::uuid IS NULL OR id <> $5::uuid)
		)
	`

	var conflict bool
	if err := r.db.QueryRow(ctx, query, tenantID, roomID, start, end, excludeID).Scan(&conflict); err != nil {
		r.log.Error("Failed to check booking conflict",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.String("room_id", roomID.String()),
			zap.Time("start", start),
			zap.Time("end", end),
		)
		return false, fmt.Errorf("check conflict for room %s: %w", roomID.String(), err)
	}

	return conflict, nil
}

func (r *bookingRepository) CountByRoom(ctx context.Context, tenantID, roomID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND room_id = $2`

	var count int64
	if err := r.db.QueryRow(ctx, query, tenantID, roomID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by room",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return 0, fmt.Errorf("count bookings by room %s: %w", roomID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) CountCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE tenant_id = $1 AND status <> 'cancelled' AND created_at >= $2 AND created_at < $3
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, tenantID, from, to).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings in period",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return 0, fmt.Errorf("count bookings for tenant %s: %w", tenantID.String(), err)
	}

	return count, nil
}
