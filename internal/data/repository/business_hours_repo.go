package repository

import (
	"context"
	"fmt"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BusinessHoursRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*entity.BusinessHours, error)
	// ReplaceAll swaps the whole week in one statement pair; callers pass all 7 days.
	ReplaceAll(ctx context.Context, tenantID uuid.UUID, hours []*entity.BusinessHours) error
}

type businessHoursRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBusinessHoursRepository(db database.Querier, log *zap.Logger) BusinessHoursRepository {
	return &businessHoursRepository{
		db:  db,
		log: log.With(zap.String("repository", "business_hours")),
	}
}

func (r *businessHoursRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*entity.BusinessHours, error) {
	query := `
		SELECT tenant_id, day_of_week, to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'),
		       is_closed, updated_at
		FROM business_hours
		WHERE tenant_id = $1
		ORDER BY day_of_week
	`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		r.log.Error("Failed to find business hours",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return nil, fmt.Errorf("find business hours for tenant %s: %w", tenantID.String(), err)
	}
	defer rows.Close()

	var hours []*entity.BusinessHours
	for rows.Next() {
		var h entity.BusinessHours
		err := rows.Scan(
			&h.TenantID,
			&h.DayOfWeek,
			&h.OpenTime,
			&h.CloseTime,
			&h.IsClosed,
			&h.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan business hours row", zap.Error(err))
			return nil, fmt.Errorf("scan business hours row: %w", err)
		}
		hours = append(hours, &h)
	}

	return hours, rows.Err()
}

func (r *businessHoursRepository) ReplaceAll(ctx context.Context, tenantID uuid.UUID, hours []*entity.BusinessHours) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM business_hours WHERE tenant_id = $1`, tenantID); err != nil {
		r.log.Error("Failed to clear business hours",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return fmt.Errorf("clear business hours for tenant %s: %w", tenantID.String(), err)
	}

	query := `
		INSERT INTO business_hours (tenant_id, day_of_week, open_time, close_time, is_closed, updated_at)
		VALUES ($1, $2, $3::time, $4::time, $5, $6)
	`

	for _, h := range hours {
		_, err := r.db.Exec(ctx, query, tenantID, h.DayOfWeek, h.OpenTime, h.CloseTime, h.IsClosed, h.UpdatedAt)
		if err != nil {
			r.log.Error("Failed to insert business hours",
				zap.Error(err),
				zap.String("tenant_id", tenantID.String()),
				zap.Int("day_of_week", h.DayOfWeek),
			)
			return fmt.Errorf("insert business hours day %d: %w", h.DayOfWeek, err)
		}
	}

	return nil
}
