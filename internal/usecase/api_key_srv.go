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

type APIKeyService interface {
	CreateAPIKey(ctx context.Context, tenantID uuid.UUID, req *request.CreateAPIKeyRequest) (*response.APIKeyResponse, error)
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]response.APIKeyResponse, error)
	RevokeAPIKey(ctx context.Context, tenantID uuid.UUID, keyID string) error
}

type apiKeyService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewAPIKeyService(repo *repository.Repository, log *zap.Logger) APIKeyService {
	return &apiKeyService{
		repo: repo,
		log:  log.With(zap.String("service", "api_key")),
		now:  time.Now,
	}
}

// CreateAPIKey returns the plaintext key once. Only a bcrypt hash of the
// secret part is stored.
func (s *apiKeyService) CreateAPIKey(ctx context.Context, tenantID uuid.UUID, req *request.CreateAPIKeyRequest) (*response.APIKeyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	key, prefix, secret, err := utils.GenerateAPIKey()
	if err != nil {
		s.log.Error("Failed to generate api key", zap.Error(err))
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	hash, err := utils.HashPassword(secret)
	if err != nil {
		s.log.Error("Failed to hash api key", zap.Error(err))
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	now := s.now().UTC()
	apiKey := &entity.APIKey{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		TenantID:   tenantID,
		Name:       req.Name,
		Prefix:     prefix,
		SecretHash: hash,
	}
	if req.ExpiresInDays != nil {
		expires := now.AddDate(0, 0, *req.ExpiresInDays)
		apiKey.ExpiresAt = &expires
	}

	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		return tx.APIKey.Create(ctx, apiKey)
	})
	if err != nil {
		s.log.Error("Failed to create api key", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("create api key: %w", err)
	}

	s.log.Info("API key created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("api_key_id", apiKey.ID.String()),
		zap.String("prefix", prefix),
	)

	resp := response.APIKeyToResponse(apiKey)
	resp.Key = key
	return &resp, nil
}

func (s *apiKeyService) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]response.APIKeyResponse, error) {
	var keys []*entity.APIKey
	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		var err error
		keys, err = tx.APIKey.ListByTenant(ctx, tenantID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to list api keys", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	out := make([]response.APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, response.APIKeyToResponse(k))
	}
	return out, nil
}

func (s *apiKeyService) RevokeAPIKey(ctx context.Context, tenantID uuid.UUID, keyID string) error {
	id, err := uuid.Parse(keyID)
	if err != nil {
		return fieldError("id", "invalid api key ID")
	}

	err = s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		keys, err := tx.APIKey.ListByTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if k.ID != id {
				continue
			}
			if k.RevokedAt != nil {
				return nil
			}
			return tx.APIKey.Revoke(ctx, tenantID, id, s.now().UTC())
		}
		return fmt.Errorf("api key %s: %w", keyID, ErrNotFound)
	})
	if err != nil {
		return err
	}

	s.log.Info("API key revoked", zap.String("tenant_id", tenantID.String()), zap.String("api_key_id", keyID))
	return nil
}
