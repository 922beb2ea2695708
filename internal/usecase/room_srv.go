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
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RoomService interface {
	// Public within the tenant
	GetRooms(ctx context.Context, tenantID uuid.UUID, activeOnly bool, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RoomResponse], error)
	GetRoomByID(ctx context.Context, tenantID uuid.UUID, roomID string) (*response.RoomResponse, error)

	// Staff
	CreateRoom(ctx context.Context, tenantID uuid.UUID, req *request.CreateRoomRequest) (*response.RoomResponse, error)
	UpdateRoom(ctx context.Context, tenantID uuid.UUID, roomID string, req *request.UpdateRoomRequest) (*response.RoomResponse, error)
	DeleteRoom(ctx context.Context, tenantID uuid.UUID, roomID string) error
}

type roomService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewRoomService(repo *repository.Repository, log *zap.Logger) RoomService {
	return &roomService{
		repo: repo,
		log:  log.With(zap.String("service", "room")),
		now:  time.Now,
	}
}

func (s *roomService) GetRooms(ctx context.Context, tenantID uuid.UUID, activeOnly bool, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RoomResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var (
		rooms []*entity.Room
		total int64
	)
	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		var err error
		rooms, err = tx.Room.List(ctx, tenantID, activeOnly, req.Limit(), req.Offset())
		if err != nil {
			return err
		}
		total, err = tx.Room.Count(ctx, tenantID, activeOnly)
		return err
	})
	if err != nil {
		s.log.Error("Failed to get rooms", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("get rooms: %w", err)
	}

	data := make([]response.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		data = append(data, response.RoomToResponse(room))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *roomService) GetRoomByID(ctx context.Context, tenantID uuid.UUID, roomID string) (*response.RoomResponse, error) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, fieldError("id", "invalid room ID")
	}

	var room *entity.Room
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		room, err = s.findRoom(ctx, tx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := response.RoomToResponse(room)
	return &resp, nil
}

func (s *roomService) CreateRoom(ctx context.Context, tenantID uuid.UUID, req *request.CreateRoomRequest) (*response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create room validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	now := s.now().UTC()
	room := &entity.Room{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:     tenantID,
		Name:         req.Name,
		Capacity:     req.Capacity,
		Category:     req.Category,
		PricePerHour: utils.RoundMoney(req.PricePerHour),
		IsActive:     true,
	}

	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		return tx.Room.Create(ctx, room)
	})
	if err != nil {
		s.log.Error("Failed to create room", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.log.Info("Room created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("room_id", room.ID.String()),
		zap.String("name", room.Name),
	)

	resp := response.RoomToResponse(room)
	return &resp, nil
}

// UpdateRoom changes only the fields present in req. A new hourly rate
// applies to future bookings; stored prices are left alone.
func (s *roomService) UpdateRoom(ctx context.Context, tenantID uuid.UUID, roomID string, req *request.UpdateRoomRequest) (*response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update room validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, fieldError("id", "invalid room ID")
	}

	var room *entity.Room
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		r, err := s.findRoom(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			r.Name = *req.Name
		}
		if req.Capacity != nil {
			r.Capacity = *req.Capacity
		}
		if req.Category != nil {
			r.Category = *req.Category
		}
		if req.PricePerHour != nil {
			r.PricePerHour = utils.RoundMoney(*req.PricePerHour)
		}
		if req.IsActive != nil {
			r.IsActive = *req.IsActive
		}
		r.UpdatedAt = s.now().UTC()

		if err := tx.Room.Update(ctx, r); err != nil {
			return err
		}
		room = r
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("Failed to update room", zap.Error(err), zap.String("room_id", roomID))
		}
		return nil, err
	}

	s.log.Info("Room updated", zap.String("room_id", roomID))

	resp := response.RoomToResponse(room)
	return &resp, nil
}

// DeleteRoom only removes rooms that were never booked. Booking history
// keeps its room, so such rooms are deactivated instead.
func (s *roomService) DeleteRoom(ctx context.Context, tenantID uuid.UUID, roomID string) error {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return fieldError("id", "invalid room ID")
	}

	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		if _, err := s.findRoom(ctx, tx, tenantID, id); err != nil {
			return err
		}

		count, err := tx.Booking.CountByRoom(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("room %s has %d bookings, deactivate it instead: %w", roomID, count, ErrInvalidState)
		}

		err = tx.Room.Delete(ctx, tenantID, id)
		if errors.Is(err, repository.ErrRoomInUse) {
			return fmt.Errorf("room %s has bookings, deactivate it instead: %w", roomID, ErrInvalidState)
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidState) {
			s.log.Error("Failed to delete room", zap.Error(err), zap.String("room_id", roomID))
		}
		return err
	}

	s.log.Info("Room deleted", zap.String("room_id", roomID))
	return nil
}

func (s *roomService) findRoom(ctx context.Context, tx *repository.Scoped, tenantID, id uuid.UUID) (*entity.Room, error) {
	room, err := tx.Room.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	return room, nil
}
