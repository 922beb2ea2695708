package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/dto/response"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subdomains that belong to the platform itself.
var reservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"app":   true,
	"admin": true,
}

type TenantService interface {
	Resolve(ctx context.Context, hints ResolveHints) (Resolution, error)
	Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error)
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*response.TenantResponse, error)
	UpdateSettings(ctx context.Context, tenantID uuid.UUID, req *request.UpdateSettingsRequest) (*response.TenantResponse, error)
	DeleteTenant(ctx context.Context, tenantID uuid.UUID) error

	// Platform operator
	SetStatus(ctx context.Context, tenantID string, req *request.UpdateTenantStatusRequest) (*response.TenantResponse, error)
}

type tenantService struct {
	repo *repository.Repository
	auth AuthService
	log  *zap.Logger
	now  func() time.Time
}

func NewTenantService(repo *repository.Repository, auth AuthService, log *zap.Logger) TenantService {
	return &tenantService{
		repo: repo,
		auth: auth,
		log:  log.With(zap.String("service", "tenant")),
		now:  time.Now,
	}
}

func (s *tenantService) Resolve(ctx context.Context, hints ResolveHints) (Resolution, error) {
	hints.Subdomain = strings.ToLower(hints.Subdomain)
	return ResolveTenant(ctx, s, hints)
}

func (s *tenantService) TenantBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error) {
	return s.repo.Tenant.FindBySubdomain(ctx, subdomain)
}

func (s *tenantService) TenantByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	return s.repo.Tenant.FindByID(ctx, id)
}

func (s *tenantService) AuthenticateAPIKey(ctx context.Context, key string) (*utils.Principal, error) {
	return s.auth.AuthenticateAPIKey(ctx, key)
}

func (s *tenantService) AuthenticateSession(ctx context.Context, token string) (*utils.Principal, error) {
	return s.auth.AuthenticateSession(ctx, token)
}

// Signup creates the tenant, its default business hours and the owner
// account in a single transaction.
func (s *tenantService) Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	subdomain := strings.ToLower(req.Subdomain)
	if reservedSubdomains[subdomain] {
		return nil, fieldError("subdomain", "subdomain is reserved")
	}

	plan := entity.TenantPlan(req.Plan)
	if plan == "" {
		plan = entity.PlanFree
	}

	hash, err := utils.HashPassword(req.OwnerPassword)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	tenant := &entity.Tenant{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:         req.Name,
		Subdomain:    subdomain,
		Plan:         plan,
		Status:       entity.TenantStatusActive,
		Settings:     map[string]any{},
	}
	owner := &entity.User{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:     tenant.ID,
		Email:        strings.ToLower(req.OwnerEmail),
		Name:         req.OwnerName,
		PasswordHash: hash,
		Role:         entity.RoleOwner,
		IsActive:     true,
	}

	err = s.repo.Tx.WithTenant(ctx, tenant.ID, func(tx *repository.Scoped) error {
		if err := tx.Tenant.Create(ctx, tenant); err != nil {
			return err
		}
		if err := tx.BusinessHours.ReplaceAll(ctx, tenant.ID, entity.DefaultBusinessHours(tenant.ID, now)); err != nil {
			return err
		}
		return tx.User.Create(ctx, owner)
	})
	if errors.Is(err, repository.ErrSubdomainTaken) {
		return nil, fmt.Errorf("subdomain %s: %w", subdomain, ErrAlreadyExists)
	}
	if err != nil {
		s.log.Error("Failed to sign up tenant", zap.Error(err), zap.String("subdomain", subdomain))
		return nil, fmt.Errorf("sign up tenant: %w", err)
	}

	s.log.Info("Tenant signed up",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subdomain", subdomain),
		zap.String("plan", string(plan)),
	)

	return &response.SignupResponse{
		Tenant: response.TenantToResponse(tenant),
		Owner:  response.UserToResponse(owner),
	}, nil
}

func (s *tenantService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*response.TenantResponse, error) {
	tenant, err := s.findTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := response.TenantToResponse(tenant)
	return &resp, nil
}

// UpdateSettings merges the given keys into the settings blob. A null value
// removes the key.
func (s *tenantService) UpdateSettings(ctx context.Context, tenantID uuid.UUID, req *request.UpdateSettingsRequest) (*response.TenantResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	set := make(map[string]any, len(req.Settings))
	var remove []string
	for k, v := range req.Settings {
		if v == nil {
			remove = append(remove, k)
			continue
		}
		set[k] = v
	}
	sort.Strings(remove)

	tenant, err := s.repo.Tenant.MergeSettings(ctx, tenantID, set, remove, s.now().UTC())
	if err != nil {
		s.log.Error("Failed to update settings", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("update settings: %w", err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}

	resp := response.TenantToResponse(tenant)
	return &resp, nil
}

// DeleteTenant is a soft delete. The row stays and stops serving traffic.
func (s *tenantService) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	if _, err := s.findTenant(ctx, tenantID); err != nil {
		return err
	}

	if err := s.repo.Tenant.UpdateStatus(ctx, tenantID, entity.TenantStatusDeleted, s.now().UTC()); err != nil {
		s.log.Error("Failed to delete tenant", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return fmt.Errorf("delete tenant: %w", err)
	}

	s.log.Info("Tenant deleted", zap.String("tenant_id", tenantID.String()))
	return nil
}

func (s *tenantService) SetStatus(ctx context.Context, tenantID string, req *request.UpdateTenantStatusRequest) (*response.TenantResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	id, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fieldError("id", "invalid tenant ID")
	}

	tenant, err := s.findTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	status := entity.TenantStatus(req.Status)
	if err := s.repo.Tenant.UpdateStatus(ctx, id, status, now); err != nil {
		s.log.Error("Failed to update tenant status", zap.Error(err), zap.String("tenant_id", tenantID))
		return nil, fmt.Errorf("update tenant status: %w", err)
	}

	s.log.Info("Tenant status changed",
		zap.String("tenant_id", tenantID),
		zap.String("from", string(tenant.Status)),
		zap.String("to", string(status)),
	)

	tenant.Status = status
	tenant.UpdatedAt = now
	resp := response.TenantToResponse(tenant)
	return &resp, nil
}

func (s *tenantService) findTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.repo.Tenant.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get tenant", zap.Error(err), zap.String("tenant_id", id.String()))
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return tenant, nil
}
