package request

type SignupRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=150"`
	Subdomain     string `json:"subdomain" validate:"required,min=3,max=63,hostname_rfc1123"`
	Plan          string `json:"plan" validate:"omitempty,oneof=free basic pro enterprise"`
	OwnerName     string `json:"owner_name" validate:"required,min=1,max=150"`
	OwnerEmail    string `json:"owner_email" validate:"required,email"`
	OwnerPassword string `json:"owner_password" validate:"required,min=8,max=72"`
}

type UpdateSettingsRequest struct {
	Settings map[string]any `json:"settings" validate:"required"`
}

type UpdateTenantStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended deleted"`
}
