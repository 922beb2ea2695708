package response

import (
	"time"

	"karaoke-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	RoomID        string               `json:"room_id"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail *string              `json:"customer_email,omitempty"`
	CustomerPhone *string              `json:"customer_phone,omitempty"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	Status        entity.BookingStatus `json:"status"`
	TotalPrice    float64              `json:"total_price"`
	Notes         *string              `json:"notes,omitempty"`
	CancelledAt   *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID.String(),
		RoomID:        b.RoomID.String(),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		TotalPrice:    b.TotalPrice,
		Notes:         b.Notes,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b))
	}
	return out
}
