package usecase

import (
	"context"
	"fmt"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/dto/response"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BusinessHoursService interface {
	GetBusinessHours(ctx context.Context, tenantID uuid.UUID) ([]response.BusinessHoursResponse, error)
	UpdateBusinessHours(ctx context.Context, tenantID uuid.UUID, req *request.UpdateBusinessHoursRequest) ([]response.BusinessHoursResponse, error)
}

type businessHoursService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewBusinessHoursService(repo *repository.Repository, log *zap.Logger) BusinessHoursService {
	return &businessHoursService{
		repo: repo,
		log:  log.With(zap.String("service", "business_hours")),
		now:  time.Now,
	}
}

func (s *businessHoursService) GetBusinessHours(ctx context.Context, tenantID uuid.UUID) ([]response.BusinessHoursResponse, error) {
	var hours []*entity.BusinessHours
	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		var err error
		hours, err = tx.BusinessHours.FindByTenant(ctx, tenantID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to get business hours", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("get business hours: %w", err)
	}

	return response.BusinessHoursToResponse(hours), nil
}

// UpdateBusinessHours replaces the whole week. Every day 0 (Sunday) to 6
// must appear exactly once. A close time earlier than the open time means
// the day runs past midnight.
func (s *businessHoursService) UpdateBusinessHours(ctx context.Context, tenantID uuid.UUID, req *request.UpdateBusinessHoursRequest) ([]response.BusinessHoursResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update business hours validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	now := s.now().UTC()
	seen := make(map[int]bool, entity.DaysPerWeek)
	hours := make([]*entity.BusinessHours, 0, entity.DaysPerWeek)

	for i, day := range req.Days {
		d := *day.DayOfWeek
		if seen[d] {
			return nil, fieldError(fmt.Sprintf("days[%d].day_of_week", i), fmt.Sprintf("day %d is listed twice", d))
		}
		seen[d] = true

		if !day.IsClosed && day.OpenTime == day.CloseTime {
			return nil, fieldError(fmt.Sprintf("days[%d].close_time", i), "close_time must differ from open_time")
		}

		hours = append(hours, &entity.BusinessHours{
			TenantID:  tenantID,
			DayOfWeek: d,
			OpenTime:  day.OpenTime,
			CloseTime: day.CloseTime,
			IsClosed:  day.IsClosed,
			UpdatedAt: now,
		})
	}
	if len(seen) != entity.DaysPerWeek {
		return nil, fieldError("days", "all 7 days of the week are required")
	}

	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		return tx.BusinessHours.ReplaceAll(ctx, tenantID, hours)
	})
	if err != nil {
		s.log.Error("Failed to update business hours", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("update business hours: %w", err)
	}

	s.log.Info("Business hours updated", zap.String("tenant_id", tenantID.String()))
	return response.BusinessHoursToResponse(sortedByDay(hours)), nil
}

func sortedByDay(hours []*entity.BusinessHours) []*entity.BusinessHours {
	out := make([]*entity.BusinessHours, entity.DaysPerWeek)
	for _, h := range hours {
		out[h.DayOfWeek] = h
	}
	return out
}
