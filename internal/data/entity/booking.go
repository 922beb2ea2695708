package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	BaseNoDelete
	TenantID      uuid.UUID     `db:"tenant_id"`
	RoomID        uuid.UUID     `db:"room_id"`
	CustomerName  string        `db:"customer_name"`
	CustomerEmail *string       `db:"customer_email"`
	CustomerPhone *string       `db:"customer_phone"`
	StartTime     time.Time     `db:"start_time"`
	EndTime       time.Time     `db:"end_time"`
	Status        BookingStatus `db:"status"`
	TotalPrice    float64       `db:"total_price"`
	Notes         *string       `db:"notes"`
	CancelledAt   *time.Time    `db:"cancelled_at"`
}

// Interval returns the booked time range.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Blocks reports whether the booking still occupies its room.
func (b *Booking) Blocks() bool {
	return b.Status != BookingStatusCancelled
}

// DefaultMaxBookingDuration bounds a single booking when no limit is configured.
const DefaultMaxBookingDuration = 24 * time.Hour

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval is non-empty.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps uses the half-open rule: a booking ending exactly when another
// starts does not overlap it. Mirrors `start_time < $end AND end_time > $start`.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Duration is the interval length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Hours is the interval length in fractional hours.
func (i Interval) Hours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// PriceFor computes hours x hourly rate, rounded to cents.
func (i Interval) PriceFor(pricePerHour float64) float64 {
	return math.Round(i.Hours()*pricePerHour*100) / 100
}
