package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims binds a login session to a tenant. The session row is still
// checked on every request so logout takes effect before expiry.
type SessionClaims struct {
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"sid"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type JWTUtil struct {
	secret []byte
	expiry time.Duration
}

func NewJWTUtil(secret string, expiryHours int) *JWTUtil {
	return &JWTUtil{
		secret: []byte(secret),
		expiry: time.Duration(expiryHours) * time.Hour,
	}
}

func (j *JWTUtil) Expiry() time.Duration {
	return j.expiry
}

// GenerateToken signs a session token
func (j *JWTUtil) GenerateToken(tenantID, userID, sessionID uuid.UUID, role string, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(j.expiry)

	claims := SessionClaims{
		TenantID:  tenantID.String(),
		SessionID: sessionID.String(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// Session is the parsed, typed view of SessionClaims.
type Session struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      string
}

// ValidateToken verifies signature and expiry and parses the ids
func (j *JWTUtil) ValidateToken(tokenString string) (*Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Session{
		TenantID:  tenantID,
		UserID:    userID,
		SessionID: sessionID,
		Role:      claims.Role,
	}, nil
}
