package response

import (
	"time"

	"karaoke-booking/internal/data/entity"
)

type RoomResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	Category     string    `json:"category,omitempty"`
	PricePerHour float64   `json:"price_per_hour"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func RoomToResponse(r *entity.Room) RoomResponse {
	return RoomResponse{
		ID:           r.ID.String(),
		Name:         r.Name,
		Capacity:     r.Capacity,
		Category:     r.Category,
		PricePerHour: r.PricePerHour,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
