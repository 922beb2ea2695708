package wire

import (
	"karaoke-booking/internal/adaptor"
	"karaoke-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBusinessHours(r chi.Router, hoursHandler *adaptor.BusinessHoursHandler, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/business-hours - Weekly opening hours
	r.Get("/api/business-hours", hoursHandler.GetBusinessHours)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.With(middleware.RequireAuth(log)).Put("/api/business-hours", hoursHandler.UpdateBusinessHours)
}
