package wire

import (
	"karaoke-booking/internal/adaptor"
	"karaoke-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBilling(r chi.Router, billingHandler *adaptor.BillingHandler, log *zap.Logger) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	// GET /api/billing/usage?period=YYYY-MM - Usage and overage for a month
	r.With(middleware.RequireAuth(log)).Get("/api/billing/usage", billingHandler.GetUsage)
}
