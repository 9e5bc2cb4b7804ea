package auth

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyPrefix is the prefix for all judge API keys
	APIKeyPrefix = "ps_"
	// APIKeyLength is the length of the random part of the API key
	APIKeyLength = 32
)

// GenerateJudgeKey generates a new judge API key. The plaintext key is shown
// once at creation time; only the bcrypt hash and a lookup prefix are stored.
func GenerateJudgeKey() (apiKey string, keyHash string, keyPrefix string, err error) {
	bytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}

	randomPart := strings.TrimRight(base64.URLEncoding.EncodeToString(bytes), "=")
	apiKey = APIKeyPrefix + randomPart

	// Prefix for identification (first 8 chars after the scheme prefix)
	keyPrefix = APIKeyPrefix + randomPart[:8]

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}

	return apiKey, string(hash), keyPrefix, nil
}

// VerifyJudgeKey checks a plaintext key against a stored hash
func VerifyJudgeKey(apiKey, keyHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(apiKey)) == nil
}

// KeyLookupPrefix returns the stored lookup prefix for a presented key, or
// "" when the key is malformed.
func KeyLookupPrefix(apiKey string) string {
	if !ValidateKeyFormat(apiKey) {
		return ""
	}
	return apiKey[:len(APIKeyPrefix)+8]
}

// ValidateKeyFormat checks if an API key has the correct format
func ValidateKeyFormat(apiKey string) bool {
	if !strings.HasPrefix(apiKey, APIKeyPrefix) {
		return false
	}
	return len(apiKey) >= len(APIKeyPrefix)+20
}
