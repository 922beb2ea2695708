package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== API KEY ====================

// APIKeyPrefix marks bearer tokens that are API keys rather than session JWTs.
const APIKeyPrefix = "kb_"

// GenerateAPIKey returns the full key handed to the client once, plus the
// public lookup prefix and the secret part that gets hashed.
// Format: kb_<8 hex prefix>_<43 char secret>
func GenerateAPIKey() (key, prefix, secret string, err error) {
	prefixBytes := make([]byte, 4)
	if _, err := rand.Read(prefixBytes); err != nil {
		return "", "", "", fmt.Errorf("generate api key prefix: %w", err)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", "", "", fmt.Errorf("generate api key secret: %w", err)
	}

	prefix = hex.EncodeToString(prefixBytes)
	secret = base64.RawURLEncoding.EncodeToString(secretBytes)
	key = APIKeyPrefix + prefix + "_" + secret

	return key, prefix, secret, nil
}

// SplitAPIKey breaks a presented key into prefix and secret.
func SplitAPIKey(key string) (prefix, secret string, ok bool) {
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return "", "", false
	}

	rest := strings.TrimPrefix(key, APIKeyPrefix)
	prefix, secret, found := strings.Cut(rest, "_")
	if !found || len(prefix) != 8 || secret == "" {
		return "", "", false
	}

	return prefix, secret, true
}

func IsAPIKey(token string) bool {
	return strings.HasPrefix(token, APIKeyPrefix)
}
