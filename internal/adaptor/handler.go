package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type Handler struct {
	Tenant        *TenantHandler
	Auth          *AuthHandler
	Room          *RoomHandler
	Booking       *BookingHandler
	BusinessHours *BusinessHoursHandler
	APIKey        *APIKeyHandler
	Billing       *BillingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Tenant:        NewTenantHandler(service.Tenant, log),
		Auth:          NewAuthHandler(service.Auth, log),
		Room:          NewRoomHandler(service.Room, log),
		Booking:       NewBookingHandler(service.Booking, log),
		BusinessHours: NewBusinessHoursHandler(service.BusinessHours, log),
		APIKey:        NewAPIKeyHandler(service.APIKey, log),
		Billing:       NewBillingHandler(service.Billing, log),
	}
}

// decodeJSON writes the 400 itself and returns false on a bad body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// tenantID reads the tenant bound by middleware.Tenant.
func tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := utils.GetTenantIDFromContext(r.Context())
	if !ok {
		utils.ResponseBadRequest(w, usecase.ErrTenantRequired.Error(), nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service errors onto the JSON envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var verr *usecase.ValidationError

	switch {
	case errors.As(err, &verr):
		log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, "Validation failed", verr.Fields)

	case errors.Is(err, usecase.ErrValidation):
		log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrTenantRequired):
		utils.ResponseBadRequest(w, usecase.ErrTenantRequired.Error(), nil)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnauthorized(w, "Invalid or expired credentials")

	case errors.Is(err, usecase.ErrTenantInactive):
		utils.ResponseForbidden(w, usecase.ErrTenantInactive.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseForbidden(w, "Access denied")

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - time slot taken",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, usecase.ErrConflict.Error())

	case errors.Is(err, usecase.ErrInvalidState), errors.Is(err, usecase.ErrAlreadyExists):
		log.Warn(operation+" failed - conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	default:
		log.Error(operation+" failed - internal error",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
