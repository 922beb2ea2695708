package wire

import (
	"karaoke-booking/internal/adaptor"
	"karaoke-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAPIKey(r chi.Router, apiKeyHandler *adaptor.APIKeyHandler, log *zap.Logger) {
	// ==================== OWNER ROUTES ====================
	r.Route("/api/api-keys", func(r chi.Router) {
		r.Use(middleware.RequireOwner(log))

		// POST /api/api-keys - Issue a key, plaintext returned once
		r.Post("/", apiKeyHandler.CreateAPIKey)

		// GET /api/api-keys - List keys without secrets
		r.Get("/", apiKeyHandler.GetAPIKeys)

		// DELETE /api/api-keys/{id} - Revoke a key
		r.Delete("/{id}", apiKeyHandler.RevokeAPIKey)
	})
}
