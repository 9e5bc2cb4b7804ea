package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails validation
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token has expired
	ErrExpiredToken = errors.New("token has expired")
)

// PlaybackClaims are the claims carried by a time-limited audio playback token
type PlaybackClaims struct {
	EventID   string `json:"event_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenSigner mints and validates signed tokens
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a token signer from a shared secret
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// MintPlaybackToken creates a playback token for one session's audio,
// valid for ttl.
func (s *TokenSigner) MintPlaybackToken(eventID, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := PlaybackClaims{
		EventID:   eventID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pitchscoop",
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidatePlaybackToken verifies a playback token and returns its claims
func (s *TokenSigner) ValidatePlaybackToken(tokenString string) (*PlaybackClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PlaybackClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*PlaybackClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
