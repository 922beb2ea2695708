// internal/wire/wire.go
package wire

import (
	"net/http"

	"karaoke-booking/internal/adaptor"
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/internal/usecase"
	"karaoke-booking/pkg/cache"
	"karaoke-booking/pkg/jwtutil"
	"karaoke-booking/pkg/metrics"
	"karaoke-booking/pkg/middleware"
	"karaoke-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router and services
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes
func Wiring(repo *repository.Repository, counter cache.UsageCounter, config *utils.Config, logger *zap.Logger) *App {
	jwt := jwtutil.NewJWTUtil(config.JWT.Secret, config.JWT.ExpiryHours)

	service := usecase.NewService(repo, jwt, counter, config.Booking, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, service, counter, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	counter cache.UsageCounter,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS())
	if config.App.RequestTimeout > 0 {
		// a cancelled context rolls back the tenant transaction in progress
		r.Use(chimw.Timeout(config.App.RequestTimeout))
	}

	// Routes that work without a tenant
	wireSignup(r, handler.Tenant, logger)
	wirePlatform(r, handler.Tenant, config, logger)

	// Everything else needs a resolved, active tenant
	r.Group(func(r chi.Router) {
		r.Use(middleware.Tenant(service.Tenant, counter, config.App.BaseDomain, logger))

		wireAuth(r, handler.Auth, logger)
		wireRoom(r, handler.Room, logger)
		wireBooking(r, handler.Booking, logger)
		wireBusinessHours(r, handler.BusinessHours, logger)
		wireTenant(r, handler.Tenant, logger)
		wireAPIKey(r, handler.APIKey, logger)
		wireBilling(r, handler.Billing, logger)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
