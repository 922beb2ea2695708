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

// ErrRoomInUse is returned by Delete while bookings still reference the room.
var ErrRoomInUse = errors.New("room has bookings")

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Room, error)
	List(ctx context.Context, tenantID uuid.UUID, activeOnly bool, limit, offset int) ([]*entity.Room, error)
	Count(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (int64, error)
	Update(ctx context.Context, room *entity.Room) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type roomRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewRoomRepository(db database.Querier, log *zap.Logger) RoomRepository {
	return &roomRepository{
		db:  db,
		log: log.With(zap.String("repository", "room")),
	}
}

const roomColumns = `id, tenant_id, name, capacity, category, price_per_hour, is_active, created_at, updated_at`

func scanRoom(row rowScanner) (*entity.Room, error) {
	var room entity.Room
	err := row.Scan(
		&room.ID,
		&room.TenantID,
		&room.Name,
		&room.Capacity,
		&room.Category,
		&room.PricePerHour,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *entity.Room) error {
	query := `
		INSERT INTO rooms (id, tenant_id, name, capacity, category, price_per_hour, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		room.ID,
		room.TenantID,
		room.Name,
		room.Capacity,
		room.Category,
		room.PricePerHour,
		room.IsActive,
		room.CreatedAt,
		room.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create room",
			zap.Error(err),
			zap.String("tenant_id", room.TenantID.String()),
			zap.String("name", room.Name),
		)
		return fmt.Errorf("create room %s: %w", room.Name, err)
	}

	return nil
}

func (r *roomRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE tenant_id = $1 AND id = $2`

	room, err := scanRoom(r.db.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find room by ID",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.String("room_id", id.String()),
		)
		return nil, fmt.Errorf("find room by ID %s: %w", id.String(), err)
	}

	return room, nil
}

func (r *roomRepository) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool, limit, offset int) ([]*entity.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE tenant_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, tenantID, activeOnly, limit, offset)
	if err != nil {
		r.log.Error("Failed to list rooms",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return nil, fmt.Errorf("list rooms for tenant %s: %w", tenantID.String(), err)
	}
	defer rows.Close()

	var rooms []*entity.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			r.log.Error("Failed to scan room row", zap.Error(err))
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (r *roomRepository) Count(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM rooms WHERE tenant_id = $1 AND ($2 = FALSE OR is_active)`

	var count int64
	if err := r.db.QueryRow(ctx, query, tenantID, activeOnly).Scan(&count); err != nil {
		r.log.Error("Failed to count rooms",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return 0, fmt.Errorf("count rooms for tenant %s: %w", tenantID.String(), err)
	}

	return count, nil
}

func (r *roomRepository) Update(ctx context.Context, room *entity.Room) error {
	query := `
		UPDATE rooms
		SET name = $3, capacity = $4, category = $5, price_per_hour = $6, is_active = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2
	`

	result, err := r.db.Exec(ctx, query,
		room.TenantID,
		room.ID,
		room.Name,
		room.Capacity,
		room.Category,
		room.PricePerHour,
		room.IsActive,
		room.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update room",
			zap.Error(err),
			zap.String("room_id", room.ID.String()),
		)
		return fmt.Errorf("update room %s: %w", room.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s not found", room.ID.String())
	}

	return nil
}

func (r *roomRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM rooms WHERE tenant_id = $1 AND id = $2`

	result, err := r.db.Exec(ctx, query, tenantID, id)
	if database.IsForeignKeyViolation(err) {
		return ErrRoomInUse
	}
	if err != nil {
		r.log.Error("Failed to delete room",
			zap.Error(err),
			zap.String("room_id", id.String()),
		)
		return fmt.Errorf("delete room %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s not found", id.String())
	}

	r.log.Info("Room deleted", zap.String("room_id", id.String()))
	return nil
}
