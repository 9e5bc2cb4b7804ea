package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJudgeKeyRoundTrip(t *testing.T) {
	apiKey, keyHash, keyPrefix, err := GenerateJudgeKey()
	require.NoError(t, err)

	assert.True(t, ValidateKeyFormat(apiKey))
	assert.Equal(t, keyPrefix, KeyLookupPrefix(apiKey))
	assert.True(t, VerifyJudgeKey(apiKey, keyHash))
	assert.False(t, VerifyJudgeKey("ps_not-the-right-key-at-all", keyHash))
}

func TestKeyLookupPrefix_RejectsMalformedKeys(t *testing.T) {
	assert.Empty(t, KeyLookupPrefix(""))
	assert.Empty(t, KeyLookupPrefix("sk-wrong-scheme"))
	assert.Empty(t, KeyLookupPrefix("ps_short"))
}

func TestPlaybackTokenRoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.MintPlaybackToken("event-1", "session-1", time.Hour)
	require.NoError(t, err)

	claims, err := signer.ValidatePlaybackToken(token)
	require.NoError(t, err)
	assert.Equal(t, "event-1", claims.EventID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestPlaybackToken_Expiry(t *testing.T) {
	signer := NewTokenSigner("test-secret")

	token, err := signer.MintPlaybackToken("event-1", "session-1", -time.Minute)
	require.NoError(t, err)

	_, err = signer.ValidatePlaybackToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPlaybackToken_WrongSecret(t *testing.T) {
	token, err := NewTokenSigner("secret-a").MintPlaybackToken("event-1", "session-1", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenSigner("secret-b").ValidatePlaybackToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
