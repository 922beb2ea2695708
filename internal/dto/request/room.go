package request

type CreateRoomRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Capacity     int     `json:"capacity" validate:"required,gt=0"`
	Category     string  `json:"category" validate:"omitempty,max=50"`
	PricePerHour float64 `json:"price_per_hour" validate:"gte=0,lte=1000000"`
}

// UpdateRoomRequest only touches the fields that are present.
type UpdateRoomRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Capacity     *int     `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Category     *string  `json:"category,omitempty" validate:"omitempty,max=50"`
	PricePerHour *float64 `json:"price_per_hour,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	IsActive     *bool    `json:"is_active,omitempty"`
}
