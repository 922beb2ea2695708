package usecase

import (
	"context"
	"fmt"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/internal/dto/response"
	"karaoke-booking/pkg/cache"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanLimits is what a plan includes per billing period. Zero means unlimited.
type PlanLimits struct {
	Bookings int64
	Rooms    int64
	APICalls int64
	BaseFee  float64
}

var Plans = map[entity.TenantPlan]PlanLimits{
	entity.PlanFree:       {Bookings: 50, Rooms: 2, APICalls: 1_000, BaseFee: 0},
	entity.PlanBasic:      {Bookings: 500, Rooms: 5, APICalls: 10_000, BaseFee: 29},
	entity.PlanPro:        {Bookings: 5_000, Rooms: 20, APICalls: 100_000, BaseFee: 99},
	entity.PlanEnterprise: {BaseFee: 499},
}

// Overage price per unit above the plan limit.
const (
	BookingOverageRate = 0.10
	RoomOverageRate    = 5.00
	APICallOverageRate = 0.001
)

const (
	MetricBookings = "bookings"
	MetricRooms    = "rooms"
	MetricAPICalls = "api_calls"
)

type BillingService interface {
	GetUsage(ctx context.Context, tenantID uuid.UUID, period string) (*response.UsageResponse, error)
}

type billingService struct {
	repo    *repository.Repository
	counter cache.UsageCounter
	log     *zap.Logger
	now     func() time.Time
}

func NewBillingService(repo *repository.Repository, counter cache.UsageCounter, log *zap.Logger) BillingService {
	return &billingService{
		repo:    repo,
		counter: counter,
		log:     log.With(zap.String("service", "billing")),
		now:     time.Now,
	}
}

func (s *billingService) GetUsage(ctx context.Context, tenantID uuid.UUID, period string) (*response.UsageResponse, error) {
	start, end, err := BillingPeriod(period, s.now())
	if err != nil {
		return nil, err
	}

	tenant, err := s.repo.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		s.log.Error("Failed to get tenant", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}

	usage := entity.Usage{TenantID: tenantID, PeriodStart: start, PeriodEnd: end}
	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		var err error
		usage.Bookings, err = tx.Booking.CountCreatedBetween(ctx, tenantID, start, end)
		if err != nil {
			return err
		}
		usage.Rooms, err = tx.Room.Count(ctx, tenantID, true)
		return err
	})
	if err != nil {
		s.log.Error("Failed to count usage", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("count usage: %w", err)
	}

	usage.APICalls, err = s.counter.APICalls(ctx, tenantID, start.Format(cache.PeriodLayout))
	if err != nil {
		s.log.Error("Failed to read api call counter", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("read api calls: %w", err)
	}

	invoice := CalculateInvoice(tenant.Plan, usage)
	return &invoice, nil
}

// BillingPeriod parses YYYY-MM into a calendar month in UTC. An empty period
// is the month containing now.
func BillingPeriod(period string, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if period == "" {
		now = now.UTC()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse(cache.PeriodLayout, period)
		if err != nil {
			return time.Time{}, time.Time{}, fieldError("period", "period must be formatted as YYYY-MM")
		}
		start = t.UTC()
	}
	return start, start.AddDate(0, 1, 0), nil
}

// CalculateInvoice applies the plan table to counted usage. Unknown plans are
// billed as free.
func CalculateInvoice(plan entity.TenantPlan, usage entity.Usage) response.UsageResponse {
	limits, ok := Plans[plan]
	if !ok {
		limits = Plans[entity.PlanFree]
	}

	lines := []response.UsageLine{
		usageLine(MetricBookings, usage.Bookings, limits.Bookings, BookingOverageRate),
		usageLine(MetricRooms, usage.Rooms, limits.Rooms, RoomOverageRate),
		usageLine(MetricAPICalls, usage.APICalls, limits.APICalls, APICallOverageRate),
	}

	total := limits.BaseFee
	for _, l := range lines {
		total += l.Amount
	}

	return response.UsageResponse{
		TenantID:    usage.TenantID.String(),
		Plan:        plan,
		Period:      usage.PeriodStart.Format(cache.PeriodLayout),
		PeriodStart: usage.PeriodStart,
		PeriodEnd:   usage.PeriodEnd,
		BaseFee:     limits.BaseFee,
		Lines:       lines,
		Total:       utils.RoundMoney(total),
	}
}

func usageLine(metric string, used, included int64, rate float64) response.UsageLine {
	var overage int64
	if included > 0 && used > included {
		overage = used - included
	}
	return response.UsageLine{
		Metric:   metric,
		Used:     used,
		Included: included,
		Overage:  overage,
		Rate:     rate,
		Amount:   utils.RoundMoney(float64(overage) * rate),
	}
}
