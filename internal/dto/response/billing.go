package response

import (
	"time"

	"karaoke-booking/internal/data/entity"
)

type UsageLine struct {
	Metric   string  `json:"metric"`
	Used     int64   `json:"used"`
	Included int64   `json:"included"`
	Overage  int64   `json:"overage"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

type UsageResponse struct {
	TenantID    string            `json:"tenant_id"`
	Plan        entity.TenantPlan `json:"plan"`
	Period      string            `json:"period"`
	PeriodStart time.Time         `json:"period_start"`
	PeriodEnd   time.Time         `json:"period_end"`
	BaseFee     float64           `json:"base_fee"`
	Lines       []UsageLine       `json:"lines"`
	Total       float64           `json:"total"`
}
