package adaptor

import (
	"net/http"

	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TenantHandler struct {
	service usecase.TenantService
	log     *zap.Logger
}

func NewTenantHandler(service usecase.TenantService, log *zap.Logger) *TenantHandler {
	return &TenantHandler{
		service: service,
		log:     log.With(zap.String("handler", "tenant")),
	}
}

// Signup handles POST /api/tenants
func (h *TenantHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "signup")
		return
	}

	utils.ResponseCreated(w, "Tenant created", resp)
}

// GetTenant handles GET /api/tenant (protected)
func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetTenant(r.Context(), tenant)
	if err != nil {
		handleServiceError(w, h.log, err, "get tenant")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// UpdateSettings handles PUT /api/tenant/settings (protected)
func (h *TenantHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req request.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateSettings(r.Context(), tenant, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update settings")
		return
	}

	utils.ResponseSuccess(w, "Settings updated", resp)
}

// DeleteTenant handles DELETE /api/tenant (owner only)
func (h *TenantHandler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTenant(r.Context(), tenant); err != nil {
		handleServiceError(w, h.log, err, "delete tenant")
		return
	}

	utils.ResponseSuccess(w, "Tenant deleted", nil)
}

// ==================== PLATFORM METHODS ====================

// SetStatus handles PUT /api/platform/tenants/{id}/status (platform key)
func (h *TenantHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTenantStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "set tenant status")
		return
	}

	utils.ResponseSuccess(w, "Tenant status updated", resp)
}
