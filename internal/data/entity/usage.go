package entity

import (
	"time"

	"github.com/google/uuid"
)

// Usage is what a tenant consumed in one billing period.
type Usage struct {
	TenantID    uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Bookings    int64
	Rooms       int64
	APICalls    int64
}
