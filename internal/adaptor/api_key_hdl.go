package adaptor

import (
	"net/http"

	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type APIKeyHandler struct {
	service usecase.APIKeyService
	log     *zap.Logger
}

func NewAPIKeyHandler(service usecase.APIKeyService, log *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		service: service,
		log:     log.With(zap.String("handler", "api_key")),
	}
}

// CreateAPIKey handles POST /api/api-keys (owner only)
func (h *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req request.CreateAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key, err := h.service.CreateAPIKey(r.Context(), tenant, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create api key")
		return
	}

	utils.ResponseCreated(w, "API key created. Store it now, it is not shown again.", key)
}

// GetAPIKeys handles GET /api/api-keys (owner only)
func (h *APIKeyHandler) GetAPIKeys(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	keys, err := h.service.ListAPIKeys(r.Context(), tenant)
	if err != nil {
		handleServiceError(w, h.log, err, "get api keys")
		return
	}

	utils.ResponseSuccess(w, "success", keys)
}

// RevokeAPIKey handles DELETE /api/api-keys/{id} (owner only)
func (h *APIKeyHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	if err := h.service.RevokeAPIKey(r.Context(), tenant, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "revoke api key")
		return
	}

	utils.ResponseSuccess(w, "API key revoked", nil)
}
