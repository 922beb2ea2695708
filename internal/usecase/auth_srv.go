package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"karaoke-booking/internal/data/entity"
	"karaoke-booking/internal/data/repository"
	"karaoke-booking/internal/dto/request"
	"karaoke-booking/internal/dto/response"
	"karaoke-booking/pkg/jwtutil"
	"karaoke-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionMeta is request information stored alongside a login session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Login(ctx context.Context, tenantID uuid.UUID, req *request.LoginRequest, meta SessionMeta) (*response.AuthResponse, error)
	Logout(ctx context.Context, principal *utils.Principal) error
	AuthenticateSession(ctx context.Context, token string) (*utils.Principal, error)
	AuthenticateAPIKey(ctx context.Context, key string) (*utils.Principal, error)
}

type authService struct {
	repo *repository.Repository
	jwt  *jwtutil.JWTUtil
	log  *zap.Logger
	now  func() time.Time
}

func NewAuthService(repo *repository.Repository, jwt *jwtutil.JWTUtil, log *zap.Logger) AuthService {
	return &authService{
		repo: repo,
		jwt:  jwt,
		log:  log.With(zap.String("service", "auth")),
		now:  time.Now,
	}
}

func (s *authService) Login(ctx context.Context, tenantID uuid.UUID, req *request.LoginRequest, meta SessionMeta) (*response.AuthResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	now := s.now().UTC()
	var (
		user      *entity.User
		token     string
		expiresAt time.Time
	)

	err := s.repo.Tx.WithTenant(ctx, tenantID, func(tx *repository.Scoped) error {
		// 2. Find user inside the tenant and check password
		u, err := tx.User.FindByEmail(ctx, tenantID, strings.ToLower(req.Email))
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if u == nil || !u.IsActive || !utils.CheckPasswordHash(req.Password, u.PasswordHash) {
			return fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}

		// 3. Drop stale sessions while we are here
		if err := tx.Session.CleanExpiredSessions(ctx, tenantID); err != nil {
			s.log.Warn("Failed to clean expired sessions", zap.Error(err))
		}

		// 4. Create session, then sign a token bound to it
		session := &entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			TenantID:   tenantID,
			UserID:     u.ID,
			ExpiresAt:  now.Add(s.jwt.Expiry()),
		}
		if meta.UserAgent != "" {
			session.UserAgent = &meta.UserAgent
		}
		if meta.IPAddress != "" {
			session.IPAddress = &meta.IPAddress
		}
		if err := tx.Session.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		token, expiresAt, err = s.jwt.GenerateToken(tenantID, u.ID, session.ID, string(u.Role), now)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.log.Warn("Login rejected", zap.String("tenant_id", tenantID.String()))
		} else {
			s.log.Error("Login failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		}
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", user.ID.String()),
	)

	resp := response.AuthToResponse(user, token, expiresAt)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, principal *utils.Principal) error {
	if principal == nil || principal.Kind != utils.PrincipalSession {
		return fmt.Errorf("logout needs a login session: %w", ErrUnauthorized)
	}

	err := s.repo.Tx.WithTenant(ctx, principal.TenantID, func(tx *repository.Scoped) error {
		return tx.Session.Revoke(ctx, principal.TenantID, principal.SessionID)
	})
	if err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err), zap.String("session_id", principal.SessionID.String()))
		return fmt.Errorf("revoke session: %w", err)
	}

	s.log.Info("User logged out", zap.String("user_id", principal.UserID.String()))
	return nil
}

// AuthenticateSession accepts a token only while its session row is live,
// so logout takes effect before the token expires.
func (s *authService) AuthenticateSession(ctx context.Context, token string) (*utils.Principal, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnauthorized)
	}

	var session *entity.Session
	err = s.repo.Tx.WithTenant(ctx, claims.TenantID, func(tx *repository.Scoped) error {
		var err error
		session, err = tx.Session.FindValidSession(ctx, claims.TenantID, claims.SessionID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to load session", zap.Error(err))
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.UserID != claims.UserID || !session.Valid(s.now()) {
		return nil, fmt.Errorf("session expired or revoked: %w", ErrUnauthorized)
	}

	return &utils.Principal{
		Kind:      utils.PrincipalSession,
		TenantID:  claims.TenantID,
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Role:      claims.Role,
		Token:     token,
	}, nil
}

func (s *authService) AuthenticateAPIKey(ctx context.Context, key string) (*utils.Principal, error) {
	prefix, secret, ok := utils.SplitAPIKey(key)
	if !ok {
		return nil, fmt.Errorf("malformed api key: %w", ErrUnauthorized)
	}

	apiKey, err := s.repo.APIKey.FindByPrefix(ctx, prefix)
	if err != nil {
		s.log.Error("Failed to load api key", zap.Error(err))
		return nil, fmt.Errorf("load api key: %w", err)
	}

	now := s.now().UTC()
	if apiKey == nil || !apiKey.Usable(now) || !utils.CheckPasswordHash(secret, apiKey.SecretHash) {
		return nil, fmt.Errorf("invalid api key: %w", ErrUnauthorized)
	}

	if err := s.repo.APIKey.TouchLastUsed(ctx, apiKey.ID, now); err != nil {
		s.log.Warn("Failed to record api key use", zap.Error(err), zap.String("api_key_id", apiKey.ID.String()))
	}

	return &utils.Principal{
		Kind:     utils.PrincipalAPIKey,
		TenantID: apiKey.TenantID,
		APIKeyID: apiKey.ID,
	}, nil
}
