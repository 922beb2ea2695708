package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingDay = time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time {
	return bookingDay.Add(time.Duration(h) * time.Hour)
}

type bookingFixture struct {
	store  *memStore
	svc    BookingService
	tenant *entity.Tenant
	room   *entity.Room
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	store := newMemStore()
	tenant := store.addTenant("alpha", entity.TenantStatusActive)
	room := store.addRoom(tenant.ID, "Room R", 25)

	svc := NewBookingService(store.repository(), 0, testLogger()).(*bookingService)
	svc.now = fixedClock(time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC))

	return &bookingFixture{store: store, svc: svc, tenant: tenant, room: room}
}

func bookingRequest(roomID uuid.UUID, from, to time.Time) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		RoomID:       roomID.String(),
		CustomerName: "Mina",
		StartTime:    from,
		EndTime:      to,
	}
}

func (f *bookingFixture) book(roomID uuid.UUID, from, to time.Time) (string, error) {
	resp, err := f.svc.CreateBooking(context.Background(), f.tenant.ID, bookingRequest(roomID, from, to))
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func TestCreateBooking_ConflictScenario(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)

	t.Run("partial overlap is rejected", func(t *testing.T) {
		_, err := f.book(f.room.ID, hour(15), hour(17))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("back to back is accepted", func(t *testing.T) {
		resp, err := f.svc.CreateBooking(context.Background(), f.tenant.ID, &request.CreateBookingRequest{
			RoomID:       f.room.ID.String(),
			CustomerName: "Jun",
			StartTime:    hour(16),
			EndTime:      hour(18),
		})
		require.NoError(t, err)
		assert.Equal(t, 50.0, resp.TotalPrice)
		assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	})

	t.Run("disjoint earlier slot is accepted", func(t *testing.T) {
		_, err := f.book(f.room.ID, hour(10), hour(12))
		require.NoError(t, err)
	})

	t.Run("contained interval is rejected", func(t *testing.T) {
		_, err := f.book(f.room.ID, hour(14).Add(30*time.Minute), hour(15).Add(30*time.Minute))
		assert.ErrorIs(t, err, ErrConflict)
	})

	assert.Len(t, f.store.storedBlocking(f.room.ID), 3)
	assert.NotEmpty(t, f.store.locks, "room lock must be taken before checking")
}

func TestCreateBooking_BackToBackBeforeExisting(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.book(f.room.ID, hour(10), hour(12))
	require.NoError(t, err)
	_, err = f.book(f.room.ID, hour(9), hour(10))
	require.NoError(t, err)
	_, err = f.book(f.room.ID, hour(12), hour(13))
	require.NoError(t, err)
}

func TestCreateBooking_OtherRoomDoesNotConflict(t *testing.T) {
	f := newBookingFixture(t)
	other := f.store.addRoom(f.tenant.ID, "Room S", 40)

	_, err := f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)

	_, err = f.book(other.ID, hour(14), hour(16))
	require.NoError(t, err)
}

func TestCreateBooking_InvalidInterval(t *testing.T) {
	f := newBookingFixture(t)

	for name, span := range map[string][2]time.Time{
		"empty":    {hour(14), hour(14)},
		"reversed": {hour(16), hour(14)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.book(f.room.ID, span[0], span[1])

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "end_time")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Empty(t, f.store.bookings)
}

func TestCreateBooking_ValidationFailure(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), f.tenant.ID, &request.CreateBookingRequest{
		RoomID: "not-a-uuid",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "room_id")
	assert.Contains(t, verr.Fields, "customer_name")
}

func TestCreateBooking_RoomChecks(t *testing.T) {
	f := newBookingFixture(t)

	t.Run("unknown room", func(t *testing.T) {
		_, err := f.book(uuid.New(), hour(10), hour(12))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive room", func(t *testing.T) {
		inactive := f.store.addRoom(f.tenant.ID, "Closed", 10)
		inactive.IsActive = false

		_, err := f.book(inactive.ID, hour(10), hour(12))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCreateBooking_CancelledBookingFreesSlot(t *testing.T) {
	f := newBookingFixture(t)

	id, err := f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(context.Background(), f.tenant.ID, id)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)

	// cancelled row is still stored
	assert.Len(t, f.store.bookings, 2)
}

func TestCreateBooking_TenantIsolation(t *testing.T) {
	f := newBookingFixture(t)
	other := f.store.addTenant("beta", entity.TenantStatusActive)
	otherRoom := f.store.addRoom(other.ID, "Room R", 25)

	_, err := f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)

	t.Run("same interval in another tenant is accepted", func(t *testing.T) {
		_, err := f.svc.CreateBooking(context.Background(), other.ID, &request.CreateBookingRequest{
			RoomID:       otherRoom.ID.String(),
			CustomerName: "Kai",
			StartTime:    hour(14),
			EndTime:      hour(16),
		})
		require.NoError(t, err)
	})

	t.Run("room of another tenant looks missing", func(t *testing.T) {
		_, err := f.book(otherRoom.ID, hour(18), hour(20))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bookings of another tenant are not listed", func(t *testing.T) {
		list, err := f.svc.ListBookings(context.Background(), other.ID, &request.ListBookingsRequest{
			PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), list.Pagination.Total)
		for _, b := range list.Data {
			assert.Equal(t, otherRoom.ID.String(), b.RoomID)
		}
	})
}

func TestCreateBooking_ConstraintCatchesMissedConflict(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)

	f.store.skipConflictCheck = true
	_, err = f.book(f.room.ID, hour(15), hour(17))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.store.bookings, 1)
}

// raceBookings books the same slot from several goroutines released at once
// and counts the outcomes.
func raceBookings(t *testing.T, f *bookingFixture, workers int) (succeeded, conflicts int) {
	t.Helper()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.book(f.room.ID, hour(14), hour(16))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()
	return succeeded, conflicts
}

func TestCreateBooking_Concurrent(t *testing.T) {
	f := newBookingFixture(t)
	// only the room lock stands between the check and the insert
	f.store.skipConstraint = true
	f.store.checkDelay = 5 * time.Millisecond

	const workers = 8
	succeeded, conflicts := raceBookings(t, f, workers)

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Len(t, f.store.storedBlocking(f.room.ID), 1)
}

func TestCreateBooking_ConcurrentWithoutRoomLock(t *testing.T) {
	f := newBookingFixture(t)
	f.store.skipConstraint = true
	f.store.skipRoomLock = true
	f.store.checkDelay = 20 * time.Millisecond

	succeeded, _ := raceBookings(t, f, 8)

	// every check ran before any insert, so the slot is double booked
	assert.Greater(t, succeeded, 1)
}

func TestCreateBooking_ConcurrentConstraintBackstop(t *testing.T) {
	f := newBookingFixture(t)
	f.store.skipConflictCheck = true
	f.store.skipRoomLock = true

	const workers = 8
	succeeded, conflicts := raceBookings(t, f, workers)

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
}

func TestCreateBooking_MaxDuration(t *testing.T) {
	ctx := context.Background()

	for name, span := range map[string][2]time.Time{
		"a day and a minute": {hour(14), hour(38).Add(time.Minute)},
		"five centuries":     {hour(14), hour(14).AddDate(500, 0, 0)},
	} {
		t.Run(name, func(t *testing.T) {
			f := newBookingFixture(t)
			_, err := f.book(f.room.ID, span[0], span[1])

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "end_time")
			assert.Empty(t, f.store.bookings)
		})
	}

	t.Run("exactly a day is accepted", func(t *testing.T) {
		f := newBookingFixture(t)
		resp, err := f.svc.CreateBooking(ctx, f.tenant.ID, bookingRequest(f.room.ID, hour(14), hour(38)))
		require.NoError(t, err)
		assert.Equal(t, 600.0, resp.TotalPrice)
	})

	t.Run("configured limit applies", func(t *testing.T) {
		f := newBookingFixture(t)
		f.svc = NewBookingService(f.store.repository(), 3*time.Hour, testLogger())

		_, err := f.book(f.room.ID, hour(14), hour(18))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "booking may last at most 3 hours", verr.Fields["end_time"])

		_, err = f.book(f.room.ID, hour(14), hour(17))
		assert.NoError(t, err)
	})

	t.Run("move past the limit is rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		_, err = f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(14),
			NewEndTime:   hour(14).AddDate(300, 0, 0),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "new_end_time")

		got, err := f.svc.GetBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)
		assert.Equal(t, hour(16), got.EndTime)
	})
}

func TestMoveBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("onto its own slot succeeds", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		moved, err := f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(14),
			NewEndTime:   hour(16),
		})
		require.NoError(t, err)
		assert.Equal(t, hour(14), moved.StartTime)
	})

	t.Run("shifting within its own slot succeeds", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		moved, err := f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(15),
			NewEndTime:   hour(18),
		})
		require.NoError(t, err)
		assert.Equal(t, 75.0, moved.TotalPrice)
	})

	t.Run("onto another booking conflicts and keeps the original", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(10), hour(12))
		require.NoError(t, err)
		_, err = f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		_, err = f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(15),
			NewEndTime:   hour(17),
		})
		assert.ErrorIs(t, err, ErrConflict)

		got, err := f.svc.GetBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)
		assert.Equal(t, hour(10), got.StartTime)
		assert.Equal(t, hour(12), got.EndTime)
	})

	t.Run("to another room reprices with its rate", func(t *testing.T) {
		f := newBookingFixture(t)
		vip := f.store.addRoom(f.tenant.ID, "VIP", 60)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		moved, err := f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    vip.ID.String(),
			NewStartTime: hour(14),
			NewEndTime:   hour(16),
		})
		require.NoError(t, err)
		assert.Equal(t, vip.ID.String(), moved.RoomID)
		assert.Equal(t, 120.0, moved.TotalPrice)

		// the old slot is free again
		_, err = f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)
	})

	t.Run("cancelled booking cannot move", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)
		_, err = f.svc.CancelBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)

		_, err = f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(18),
			NewEndTime:   hour(19),
		})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("staying in a room deactivated later succeeds", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)
		f.store.rooms[f.room.ID].IsActive = false

		moved, err := f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(14),
			NewEndTime:   hour(16),
		})
		require.NoError(t, err)
		assert.Equal(t, f.room.ID.String(), moved.RoomID)
	})

	t.Run("into an inactive room is rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		closed := f.store.addRoom(f.tenant.ID, "Closed", 10)
		closed.IsActive = false
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		_, err = f.svc.MoveBooking(ctx, f.tenant.ID, id, &request.MoveBookingRequest{
			NewRoomID:    closed.ID.String(),
			NewStartTime: hour(14),
			NewEndTime:   hour(16),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "room_id")
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.MoveBooking(ctx, f.tenant.ID, uuid.NewString(), &request.MoveBookingRequest{
			NewRoomID:    f.room.ID.String(),
			NewStartTime: hour(18),
			NewEndTime:   hour(19),
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBookingTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel is idempotent", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		_, err = f.svc.CancelBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)
		again, err := f.svc.CancelBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCancelled, again.Status)
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		done, err := f.svc.CompleteBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCompleted, done.Status)

		_, err = f.svc.CancelBooking(ctx, f.tenant.ID, id)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("completed booking still blocks its slot", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)
		_, err = f.svc.CompleteBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)

		_, err = f.book(f.room.ID, hour(15), hour(16))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("failed update rolls back", func(t *testing.T) {
		f := newBookingFixture(t)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		f.store.failUpdateStatus = errors.New("connection reset")
		_, err = f.svc.CancelBooking(ctx, f.tenant.ID, id)
		require.Error(t, err)
		f.store.failUpdateStatus = nil

		got, err := f.svc.GetBooking(ctx, f.tenant.ID, id)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusConfirmed, got.Status)
	})

	t.Run("booking of another tenant is not found", func(t *testing.T) {
		f := newBookingFixture(t)
		other := f.store.addTenant("beta", entity.TenantStatusActive)
		id, err := f.book(f.room.ID, hour(14), hour(16))
		require.NoError(t, err)

		_, err = f.svc.CancelBooking(ctx, other.ID, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListBookings_Filters(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.book(f.room.ID, hour(10), hour(12))
	require.NoError(t, err)
	id, err := f.book(f.room.ID, hour(14), hour(16))
	require.NoError(t, err)
	_, err = f.book(f.room.ID, hour(18), hour(20))
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, f.tenant.ID, id)
	require.NoError(t, err)

	status := string(entity.BookingStatusConfirmed)
	list, err := f.svc.ListBookings(ctx, f.tenant.ID, &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		Status:           &status,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)

	from, to := hour(11), hour(15)
	list, err = f.svc.ListBookings(ctx, f.tenant.ID, &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		From:             &from,
		To:               &to,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)

	_, err = f.svc.ListBookings(ctx, f.tenant.ID, &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		From:             &to,
		To:               &from,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ListBookings(ctx, f.tenant.ID, &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1 << 60, PerPage: 100},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckConflict_InvalidInterval(t *testing.T) {
	f := newBookingFixture(t)

	_, err := CheckConflict(context.Background(), &memBookingRepo{m: f.store, scope: f.tenant.ID},
		f.tenant.ID, f.room.ID, entity.Interval{Start: hour(12), End: hour(10)}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}
