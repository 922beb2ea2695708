package entity

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusDeleted   TenantStatus = "deleted"
)

type TenantPlan string

const (
	PlanFree       TenantPlan = "free"
	PlanBasic      TenantPlan = "basic"
	PlanPro        TenantPlan = "pro"
	PlanEnterprise TenantPlan = "enterprise"
)

type Tenant struct {
	BaseNoDelete
	Name      string         `db:"name"`
	Subdomain string         `db:"subdomain"`
	Plan      TenantPlan     `db:"plan"`
	Status    TenantStatus   `db:"status"`
	Settings  map[string]any `db:"settings"`
}

// IsActive reports whether the tenant may serve traffic.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
