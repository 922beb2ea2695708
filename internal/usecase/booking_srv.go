package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/dto/response"
	"karaoke-booking/pkg/metrics"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Public within the tenant
	CreateBooking(ctx context.Context, tenantID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// Staff
	GetBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, tenantID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	MoveBooking(ctx context.Context, tenantID uuid.UUID, bookingID string, req *request.MoveBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	CompleteBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	repo        *repository.Repository
	log         *zap.Logger
	now         func() time.Time
	maxDuration time.Duration
}

// NewBookingService caps every booking at maxDuration; zero or less means
// entity.DefaultMaxBookingDuration.
func NewBookingService(repo *repository.Repository, maxDuration time.Duration, log *zap.Logger) BookingService {
	if maxDuration <= 0 {
		maxDuration = entity.DefaultMaxBookingDuration
	}
	return &bookingService{
		repo:        repo,
		log:         log.With(zap.String("service", "booking")),
		now:         time.Now,
		maxDuration: maxDuration,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, tenantID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// 1. Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fieldError("room_id", "invalid room ID")
	}

	interval := entity.Interval{Start: req.StartTime.UTC(), End: req.EndTime.UTC()}
	if err := checkInterval(interval, s.maxDuration, "start_time", "end_time"); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking := &entity.Booking{
		BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:      tenantID,
		RoomID:        roomID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartTime:     interval.Start,
		EndTime:       interval.End,
		Status:        entity.BookingStatusConfirmed,
		Notes:         req.Notes,
	}

	// 2. Lock the room, check, insert. All or nothing.
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		room, err := s.bookableRoom(ctx, tx, tenantID, roomID)
		if err != nil {
			return err
		}

		if err := tx.Booking.LockRoom(ctx, tenantID, roomID); err != nil {
			return err
		}

		conflict, err := CheckConflict(ctx, tx.Booking, tenantID, roomID, interval, nil)
		if err != nil {
			return err
		}
		if conflict {
			metrics.RecordConflict("create", conflictFromCheck)
			return fmt.Errorf("room %s: %w", roomID, ErrConflict)
		}

		booking.TotalPrice = interval.PriceFor(room.PricePerHour)
		return s.insert(ctx, tx, booking)
	})
	if err != nil {
		s.logFailure("create", err, tenantID, booking.ID)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("room_id", roomID.String()),
		zap.Time("start_time", booking.StartTime),
		zap.Time("end_time", booking.EndTime),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fieldError("id", "invalid booking ID")
	}

	var booking *entity.Booking
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		booking, err = tx.Booking.FindByID(ctx, tenantID, id)
		return err
	})
	if err != nil {
		s.log.Error("Failed to get booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListBookings(ctx context.Context, tenantID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	filter := repository.BookingFilter{From: req.From, To: req.To}
	if req.RoomID != nil {
		roomID, err := uuid.Parse(*req.RoomID)
		if err != nil {
			return nil, fieldError("room_id", "invalid room ID")
		}
		filter.RoomID = &roomID
	}
	if req.Status != nil {
		status := entity.BookingStatus(*req.Status)
		filter.Status = &status
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fieldError("to", "to must be after from")
	}

	var (
		bookings []*entity.Booking
		total    int64
	)
	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		var err error
		bookings, err = tx.Booking.List(ctx, tenantID, filter, req.Limit(), req.Offset())
		if err != nil {
			return err
		}
		total, err = tx.Booking.Count(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

// MoveBooking re-runs the conflict check against the new room and interval
// with the booking itself excluded, so moving onto its own slot succeeds.
func (s *bookingService) MoveBooking(ctx context.Context, tenantID uuid.UUID, bookingID string, req *request.MoveBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Move booking validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fieldError("id", "invalid booking ID")
	}
	newRoomID, err := uuid.Parse(req.NewRoomID)
	if err != nil {
		return nil, fieldError("new_room_id", "invalid room ID")
	}

	interval := entity.Interval{Start: req.NewStartTime.UTC(), End: req.NewEndTime.UTC()}
	if err := checkInterval(interval, s.maxDuration, "new_start_time", "new_end_time"); err != nil {
		return nil, err
	}

	var booking *entity.Booking
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		if b.Status != entity.BookingStatusConfirmed {
			return fmt.Errorf("cannot move a %s booking: %w", b.Status, ErrInvalidState)
		}

		room, err := s.findRoom(ctx, tx, tenantID, newRoomID)
		if err != nil {
			return err
		}
		// staying in a room deactivated after the booking was made is allowed
		if newRoomID != b.RoomID && !room.IsActive {
			return errRoomInactive
		}

		if err := tx.Booking.LockRoom(ctx, tenantID, newRoomID); err != nil {
			return err
		}

		conflict, err := CheckConflict(ctx, tx.Booking, tenantID, newRoomID, interval, &b.ID)
		if err != nil {
			return err
		}
		if conflict {
			metrics.RecordConflict("move", conflictFromCheck)
			return fmt.Errorf("room %s: %w", newRoomID, ErrConflict)
		}

		b.RoomID = newRoomID
		b.StartTime = interval.Start
		b.EndTime = interval.End
		b.TotalPrice = interval.PriceFor(room.PricePerHour)
		b.UpdatedAt = s.now().UTC()

		err = tx.Booking.UpdateSchedule(ctx, b)
		if errors.Is(err, repository.ErrBookingOverlap) {
			metrics.RecordConflict("move", conflictFromConstraint)
			return fmt.Errorf("room %s: %w", newRoomID, ErrConflict)
		}
		if errors.Is(err, repository.ErrPriceOutOfRange) {
			return errPriceTooHigh
		}
		if err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		s.logFailure("move", err, tenantID, id)
		return nil, err
	}

	s.log.Info("Booking moved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("booking_id", bookingID),
		zap.String("room_id", newRoomID.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// CancelBooking is idempotent. Cancelled bookings stay stored and stop
// blocking their interval.
func (s *bookingService) CancelBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, tenantID, bookingID, entity.BookingStatusCancelled, "cancel")
}

func (s *bookingService) CompleteBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, tenantID, bookingID, entity.BookingStatusCompleted, "complete")
}

func (s *bookingService) transition(ctx context.Context, tenantID uuid.UUID, bookingID string, to entity.BookingStatus, operation string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fieldError("id", "invalid booking ID")
	}

	var booking *entity.Booking
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}

		booking = b
		if b.Status == to {
			return nil
		}
		if b.Status != entity.BookingStatusConfirmed {
			return fmt.Errorf("cannot %s a %s booking: %w", operation, b.Status, ErrInvalidState)
		}

		now := s.now().UTC()
		if err := tx.Booking.UpdateStatus(ctx, tenantID, id, to, now); err != nil {
			return err
		}
		b.Status = to
		b.UpdatedAt = now
		if to == entity.BookingStatusCancelled {
			b.CancelledAt = &now
		}
		return nil
	})
	if err != nil {
		s.logFailure(operation, err, tenantID, id)
		return nil, err
	}

	s.log.Info("Booking status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("booking_id", bookingID),
		zap.String("status", string(booking.Status)),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

var (
	errRoomInactive = fieldError("room_id", "room is not accepting bookings")
	errPriceTooHigh = fieldError("end_time", "total price exceeds the maximum a booking can cost")
)

// bookableRoom loads a room of this tenant that accepts bookings.
func (s *bookingService) bookableRoom(ctx context.Context, tx *repository.Scoped, tenantID, roomID uuid.UUID) (*entity.Room, error) {
	room, err := s.findRoom(ctx, tx, tenantID, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, errRoomInactive
	}
	return room, nil
}

// findRoom reports a room of another tenant exactly like a missing one.
func (s *bookingService) findRoom(ctx context.Context, tx *repository.Scoped, tenantID, roomID uuid.UUID) (*entity.Room, error) {
	room, err := tx.Room.FindByID(ctx, tenantID, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return room, nil
}

func (s *bookingService) insert(ctx context.Context, tx *repository.Scoped, booking *entity.Booking) error {
	err := tx.Booking.Create(ctx, booking)
	if errors.Is(err, repository.ErrBookingOverlap) {
		metrics.RecordConflict("create", conflictFromConstraint)
		return fmt.Errorf("room %s: %w", booking.RoomID, ErrConflict)
	}
	if errors.Is(err, repository.ErrPriceOutOfRange) {
		return errPriceTooHigh
	}
	return err
}

func (s *bookingService) logFailure(operation string, err error, tenantID, bookingID uuid.UUID) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("tenant_id", tenantID.String()),
		zap.String("booking_id", bookingID.String()),
	}
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidState):
		s.log.Warn("Booking rejected", append(fields, zap.String("reason", err.Error()))...)
	default:
		s.log.Error("Booking operation failed", append(fields, zap.Error(err))...)
	}
}
