package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewTokenManager_RequiresKeyLength(t *testing.T) {
	_, err := NewTokenManager("short")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewTokenManager(testKey)
	assert.NoError(t, err)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm, err := NewTokenManager(testKey)
	require.NoError(t, err)

	token, err := tm.GenerateAccessToken("user-1", "doc@example.com", "Doctor", time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "doc@example.com", claims.Email)
	assert.Equal(t, "Doctor", claims.Role)

	_, err = tm.ValidateToken(token, "Doctor", "Nurse")
	assert.NoError(t, err)
	_, err = tm.ValidateToken(token, "Admin")
	assert.ErrorIs(t, err, ErrInsufficientRole)
}

func TestTokenManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	tm, err := NewTokenManager(testKey)
	require.NoError(t, err)

	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }
	token, err := tm.GenerateAccessToken("user-1", "p@example.com", "Patient", time.Hour)
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other, err := NewTokenManager("abcdef0123456789abcdef0123456789")
	require.NoError(t, err)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	_, err = tm.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenManager_RequiresSubject(t *testing.T) {
	tm, err := NewTokenManager(testKey)
	require.NoError(t, err)

	token, err := tm.GenerateAccessToken("", "p@example.com", "Patient", time.Hour)
	require.NoError(t, err)
	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}
