package usecase

import (
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/pkg/cache"
	"karaoke-booking/pkg/jwtutil"
	"karaoke-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Tenant        TenantService
	Auth          AuthService
	Room          RoomService
	Booking       BookingService
	BusinessHours BusinessHoursService
	APIKey        APIKeyService
	Billing       BillingService
}

func NewService(repo *repository.Repository, jwt *jwtutil.JWTUtil, counter cache.UsageCounter, booking utils.BookingConfig, log *zap.Logger) *Service {
	auth := NewAuthService(repo, jwt, log)

	return &Service{
		Tenant:        NewTenantService(repo, auth, log),
		Auth:          auth,
		Room:          NewRoomService(repo, log),
		Booking:       NewBookingService(repo, booking.MaxDuration, log),
		BusinessHours: NewBusinessHoursService(repo, log),
		APIKey:        NewAPIKeyService(repo, log),
		Billing:       NewBillingService(repo, counter, log),
	}
}
