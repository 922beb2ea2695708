package adaptor

import (
	"net/http"

	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/utils"

	"go.uber.org/zap"
)

type BusinessHoursHandler struct {
	service usecase.BusinessHoursService
	log     *zap.Logger
}

func NewBusinessHoursHandler(service usecase.BusinessHoursService, log *zap.Logger) *BusinessHoursHandler {
	return &BusinessHoursHandler{
		service: service,
		log:     log.With(zap.String("handler", "business_hours")),
	}
}

// GetBusinessHours handles GET /api/business-hours (public within tenant)
func (h *BusinessHoursHandler) GetBusinessHours(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	hours, err := h.service.GetBusinessHours(r.Context(), tenant)
	if err != nil {
		handleServiceError(w, h.log, err, "get business hours")
		return
	}

	utils.ResponseSuccess(w, "success", hours)
}

// UpdateBusinessHours handles PUT /api/business-hours (protected)
func (h *BusinessHoursHandler) UpdateBusinessHours(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req request.UpdateBusinessHoursRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hours, err := h.service.UpdateBusinessHours(r.Context(), tenant, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update business hours")
		return
	}

	utils.ResponseSuccess(w, "Business hours updated", hours)
}
