package wire

import (
	"karaoke-booking/internal/adaptor"
	"karaoke-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRoom(r chi.Router, roomHandler *adaptor.RoomHandler, log *zap.Logger) {
	r.Route("/api/rooms", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		// GET /api/rooms - List rooms
		r.Get("/", roomHandler.GetRooms)

		// GET /api/rooms/{id} - Room details
		r.Get("/{id}", roomHandler.GetRoomByID)

		// ==================== PROTECTED ROUTES (require auth) ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(log))

			// POST /api/rooms - Create room
			r.Post("/", roomHandler.CreateRoom)

			// PUT /api/rooms/{id} - Update room
			r.Put("/{id}", roomHandler.UpdateRoom)

			// DELETE /api/rooms/{id} - Delete a room that was never booked
			r.Delete("/{id}", roomHandler.DeleteRoom)
		})
	})
}
