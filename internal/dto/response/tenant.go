package response

import (
	"time"

	"karaoke-booking/internal/data/entity"
)

type TenantResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Subdomain string              `json:"subdomain"`
	Plan      entity.TenantPlan   `json:"plan"`
	Status    entity.TenantStatus `json:"status"`
	Settings  map[string]any      `json:"settings"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type SignupResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Owner  UserResponse   `json:"owner"`
}

func TenantToResponse(t *entity.Tenant) TenantResponse {
	settings := t.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return TenantResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Subdomain: t.Subdomain,
		Plan:      t.Plan,
		Status:    t.Status,
		Settings:  settings,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
