package wire

import (
	"karaoke-booking/internal/adaptor"
	"karaoke-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, log *zap.Logger) {
	r.Route("/api/bookings", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		// POST /api/bookings - Book a room (customers book without an account)
		r.Post("/", bookingHandler.CreateBooking)

		// ==================== PROTECTED ROUTES (require auth) ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(log))

			// GET /api/bookings - List bookings with filters
			r.Get("/", bookingHandler.GetBookings)

			// GET /api/bookings/{id} - Booking details
			r.Get("/{id}", bookingHandler.GetBookingByID)

			// PUT /api/bookings/{id}/move - Move to another room or time
			r.Put("/{id}/move", bookingHandler.MoveBooking)

			// PUT /api/bookings/{id}/cancel - Cancel, frees the slot
			r.Put("/{id}/cancel", bookingHandler.CancelBooking)

			// PUT /api/bookings/{id}/complete - Mark as completed
			r.Put("/{id}/complete", bookingHandler.CompleteBooking)
		})
	})
}
