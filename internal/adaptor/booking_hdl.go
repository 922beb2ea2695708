package adaptor

import (
	"net/http"

	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (public within tenant)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), tenant, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetBookings handles GET /api/bookings (protected)
func (h *BookingHandler) GetBookings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
	}
	if v := query.Get("room_id"); v != "" {
		req.RoomID = &v
	}
	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	var err error
	if req.From, err = utils.ParseTimeParam(query.Get("from")); err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"from": "must be an RFC3339 timestamp"})
		return
	}
	if req.To, err = utils.ParseTimeParam(query.Get("to")); err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"to": "must be an RFC3339 timestamp"})
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), tenant, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBookingByID handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), tenant, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking by ID")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// MoveBooking handles PUT /api/bookings/{id}/move (protected)
func (h *BookingHandler) MoveBooking(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req request.MoveBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.MoveBooking(r.Context(), tenant, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "move booking")
		return
	}

	utils.ResponseSuccess(w, "Booking moved", booking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (protected)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), tenant, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// CompleteBooking handles PUT /api/bookings/{id}/complete (protected)
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.CompleteBooking(r.Context(), tenant, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "complete booking")
		return
	}

	utils.ResponseSuccess(w, "Booking completed", booking)
}
