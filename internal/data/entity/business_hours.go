package entity

import (
	"time"

	"github.com/google/uuid"
)

// DaysPerWeek is the number of business hours rows every tenant has.
const DaysPerWeek = 7

type BusinessHours struct {
	TenantID  uuid.UUID `db:"tenant_id"`
	DayOfWeek int       `db:"day_of_week"` // 0 = Sunday
	OpenTime  string    `db:"open_time"`   // HH:MM
	CloseTime string    `db:"close_time"`  // HH:MM
	IsClosed  bool      `db:"is_closed"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DefaultBusinessHours is what a new tenant starts with.
func DefaultBusinessHours(tenantID uuid.UUID, now time.Time) []*BusinessHours {
	hours := make([]*BusinessHours, 0, DaysPerWeek)
	for day := 0; day < DaysPerWeek; day++ {
		hours = append(hours, &BusinessHours{
			TenantID:  tenantID,
			DayOfWeek: day,
			OpenTime:  "12:00",
			CloseTime: "23:59",
			UpdatedAt: now,
		})
	}
	return hours
}
