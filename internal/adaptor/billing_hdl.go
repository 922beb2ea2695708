package adaptor

import (
	"net/http"

	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/utils"

	"go.uber.org/zap"
)

type BillingHandler struct {
	service usecase.BillingService
	log     *zap.Logger
}

func NewBillingHandler(service usecase.BillingService, log *zap.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		log:     log.With(zap.String("handler", "billing")),
	}
}

// GetUsage handles GET /api/billing/usage?period=YYYY-MM (protected)
func (h *BillingHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	usage, err := h.service.GetUsage(r.Context(), tenant, r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(w, h.log, err, "get usage")
		return
	}

	utils.ResponseSuccess(w, "success", usage)
}
