package wire

import (
	"karaoke-booking/internal/adaptor"
	"karaoke-booking/pkg/middleware"
	"karaoke-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSignup(r chi.Router, tenantHandler *adaptor.TenantHandler, log *zap.Logger) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/tenants - Sign up a new tenant with its owner account
	r.Post("/api/tenants", tenantHandler.Signup)
}

func wirePlatform(r chi.Router, tenantHandler *adaptor.TenantHandler, config *utils.Config, log *zap.Logger) {
	// ==================== PLATFORM ROUTES ====================
	r.Route("/api/platform", func(r chi.Router) {
		r.Use(middleware.PlatformKey(config.Platform.AdminKey, log))

		// PUT /api/platform/tenants/{id}/status - Activate, suspend or delete a tenant
		r.Put("/tenants/{id}/status", tenantHandler.SetStatus)
	})
}

func wireTenant(r chi.Router, tenantHandler *adaptor.TenantHandler, log *zap.Logger) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Route("/api/tenant", func(r chi.Router) {
		r.Use(middleware.RequireAuth(log))

		// GET /api/tenant - Current tenant profile
		r.Get("/", tenantHandler.GetTenant)

		// PUT /api/tenant/settings - Merge settings
		r.Put("/settings", tenantHandler.UpdateSettings)

		// DELETE /api/tenant - Soft delete (owner only)
		r.With(middleware.RequireOwner(log)).Delete("/", tenantHandler.DeleteTenant)
	})
}
