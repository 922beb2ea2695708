package request

import "time"

type CreateBookingRequest struct {
	RoomID        string    `json:"room_id" validate:"required,uuid"`
	CustomerName  string    `json:"customer_name" validate:"required,min=1,max=150"`
	CustomerEmail *string   `json:"customer_email,omitempty" validate:"omitempty,email,max=255"`
	CustomerPhone *string   `json:"customer_phone,omitempty" validate:"omitempty,min=5,max=30"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type MoveBookingRequest struct {
	NewRoomID    string    `json:"new_room_id" validate:"required,uuid"`
	NewStartTime time.Time `json:"new_start_time" validate:"required"`
	NewEndTime   time.Time `json:"new_end_time" validate:"required"`
}

type ListBookingsRequest struct {
	PaginatedRequest
	RoomID *string    `json:"room_id" validate:"omitempty,uuid"`
	Status *string    `json:"status" validate:"omitempty,oneof=confirmed cancelled completed"`
	From   *time.Time `json:"from"`
	To     *time.Time `json:"to"`
}
