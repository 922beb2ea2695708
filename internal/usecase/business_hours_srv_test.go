package usecase

import (
	"context"
	"testing"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func week() []request.BusinessHoursDay {
	days := make([]request.BusinessHoursDay, 0, entity.DaysPerWeek)
	for i := entity.DaysPerWeek - 1; i >= 0; i-- {
		d := i
		days = append(days, request.BusinessHoursDay{DayOfWeek: &d, OpenTime: "18:00", CloseTime: "02:00"})
	}
	return days
}

func TestUpdateBusinessHours(t *testing.T) {
	store := newMemStore()
	tenant := store.addTenant("alpha", entity.TenantStatusActive)
	svc := NewBusinessHoursService(store.repository(), testLogger())
	ctx := context.Background()

	days := week()
	days[0].IsClosed = true // Saturday

	resp, err := svc.UpdateBusinessHours(ctx, tenant.ID, &request.UpdateBusinessHoursRequest{Days: days})
	require.NoError(t, err)
	require.Len(t, resp, entity.DaysPerWeek)
	for i, h := range resp {
		assert.Equal(t, i, h.DayOfWeek, "response is ordered by day")
	}
	assert.True(t, resp[6].IsClosed)
	assert.Equal(t, "02:00", resp[1].CloseTime, "close before open runs past midnight")

	got, err := svc.GetBusinessHours(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, got, entity.DaysPerWeek)

	t.Run("hours of another tenant are not visible", func(t *testing.T) {
		other := store.addTenant("beta", entity.TenantStatusActive)
		got, err := svc.GetBusinessHours(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestUpdateBusinessHours_Rejects(t *testing.T) {
	store := newMemStore()
	tenant := store.addTenant("alpha", entity.TenantStatusActive)
	svc := NewBusinessHoursService(store.repository(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name  string
		days  func() []request.BusinessHoursDay
		field string
	}{
		{
			name:  "missing day",
			days:  func() []request.BusinessHoursDay { return week()[:6] },
			field: "days",
		},
		{
			name: "duplicate day",
			days: func() []request.BusinessHoursDay {
				d := week()
				d[1].DayOfWeek = d[0].DayOfWeek
				return d
			},
			field: "days[1].day_of_week",
		},
		{
			name: "bad time format",
			days: func() []request.BusinessHoursDay {
				d := week()
				d[2].OpenTime = "25:00"
				return d
			},
			field: "open_time",
		},
		{
			name: "open equals close",
			days: func() []request.BusinessHoursDay {
				d := week()
				d[3].CloseTime = d[3].OpenTime
				return d
			},
			field: "days[3].close_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateBusinessHours(ctx, tenant.ID, &request.UpdateBusinessHoursRequest{Days: tt.days()})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	t.Run("closed day may have equal times", func(t *testing.T) {
		d := week()
		d[3].CloseTime = d[3].OpenTime
		d[3].IsClosed = true
		_, err := svc.UpdateBusinessHours(ctx, tenant.ID, &request.UpdateBusinessHoursRequest{Days: d})
		require.NoError(t, err)
	})
}
