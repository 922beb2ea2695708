package entity

import "github.com/google/uuid"

type Room struct {
	BaseNoDelete
	TenantID     uuid.UUID `db:"tenant_id"`
	Name         string    `db:"name"`
	Capacity     int       `db:"capacity"`
	Category     string    `db:"category"`
	PricePerHour float64   `db:"price_per_hour"`
	IsActive     bool      `db:"is_active"`
}
