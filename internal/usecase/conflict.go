package usecase

import (
	"context"
	"fmt"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"

	"github.com/google/uuid"
)

// Labels for metrics.BookingConflicts.
const (
	conflictFromCheck      = "check"
	conflictFromConstraint = "constraint"
)

// checkInterval rejects empty, reversed and overlong intervals. Fields name
// the request attributes the messages refer to.
func checkInterval(interval entity.Interval, maxDuration time.Duration, startField, endField string) error {
	if !interval.Valid() {
		return fieldError(endField, fmt.Sprintf("%s must be after %s", endField, startField))
	}
	if interval.Duration() > maxDuration {
		return fieldError(endField, fmt.Sprintf("booking may last at most %s", formatHours(maxDuration)))
	}
	return nil
}

func formatHours(d time.Duration) string {
	if h := d.Hours(); h == float64(int64(h)) {
		return fmt.Sprintf("%d hours", int64(h))
	}
	return d.String()
}

// CheckConflict reports whether any non-cancelled booking of the same room
// and tenant overlaps interval. excludeID skips one booking, which is how a
// move avoids conflicting with itself.
//
// Callers must hold the room lock (BookingRepository.LockRoom) in the same
// transaction that writes, otherwise two requests can both see a free slot.
func CheckConflict(
	ctx context.Context,
	bookings repository.BookingRepository,
	tenantID, roomID uuid.UUID,
	interval entity.Interval,
	excludeID *uuid.UUID,
) (bool, error) {
	if !interval.Valid() {
		return false, fieldError("end_time", "end_time must be after start_time")
	}

	conflict, err := bookings.HasConflict(ctx, tenantID, roomID, interval.Start, interval.End, excludeID)
	if err != nil {
		return false, fmt.Errorf("check conflict for room %s: %w", roomID, err)
	}
	return conflict, nil
}
