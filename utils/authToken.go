package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
)

// AccessTokenExpiry is the default lifetime of tokens minted by the CLI.
const AccessTokenExpiry = 24 * time.Hour

var (
	ErrInvalidKey       = errors.New("symmetric key must be 32 bytes long")
	ErrTokenExpired     = errors.New("token expired")
	ErrInsufficientRole = errors.New("insufficient permissions")
)

// TokenClaims is the identity carried by an access token.
type TokenClaims struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Expiry time.Time `json:"expiry"`
}

// TokenManager encrypts and verifies PASETO v2 local tokens with a shared key.
type TokenManager struct {
	key []byte
	now func() time.Time
}

// NewTokenManager checks the key length and returns a manager for it.
func NewTokenManager(symmetricKey string) (*TokenManager, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(symmetricKey))
	}
	return &TokenManager{key: []byte(symmetricKey), now: time.Now}, nil
}

// GenerateAccessToken mints a token for the given identity.
func (m *TokenManager) GenerateAccessToken(userID, email, role string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Expiry: m.now().Add(ttl),
	}

	token, err := paseto.NewV2().Encrypt(m.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken decrypts the token, checks expiry and, when roles are given,
// requires the token role to be one of them.
func (m *TokenManager) ValidateToken(tokenString string, requiredRoles ...string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}

	if len(requiredRoles) == 0 {
		return &claims, nil
	}
	for _, role := range requiredRoles {
		if claims.Role == role {
			return &claims, nil
		}
	}
	return nil, fmt.Errorf("%w: role %q", ErrInsufficientRole, claims.Role)
}
