package middlewares

import (
	"IDMS/models"
	"IDMS/utils"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// contextKey defines a custom context key type to store user details in the context.
type contextKey string

const currentUserKey contextKey = "currentUser"

// accessToken reads the caller's token from the accessToken query parameter or
// the X-Access-Token header. Authorization carries the client key instead.
func accessToken(c *gin.Context) string {
	if token := c.Query("accessToken"); token != "" {
		return token
	}
	return c.GetHeader("X-Access-Token")
}

// TokenAuthMiddleware requires a valid access token and stores the caller in the request context.
func TokenAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			return
		}
		if !authenticate(c, tokens, token) {
			return
		}
		c.Next()
	}
}

// OptionalTokenAuthMiddleware lets anonymous requests through but still rejects
// a token that is present and invalid.
func OptionalTokenAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := accessToken(c); token != "" && !authenticate(c, tokens, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *utils.TokenManager, token string) bool {
	claims, err := tokens.ValidateToken(token, models.RoleAdmin, models.RoleDoctor, models.RoleNurse, models.RolePatient)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return false
	}

	user := &models.CurrentUser{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
	c.Request = c.Request.WithContext(WithCurrentUser(c.Request.Context(), user))
	return true
}

// RoleAuthMiddleware restricts access to users holding one of the given roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := ExtractUserFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
	}
}

// WithCurrentUser stores the authenticated caller in ctx.
func WithCurrentUser(ctx context.Context, user *models.CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// ExtractUserFromContext retrieves the authenticated caller.
func ExtractUserFromContext(ctx context.Context) (*models.CurrentUser, error) {
	user, ok := ctx.Value(currentUserKey).(*models.CurrentUser)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// CurrentUser returns the caller, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.CurrentUser {
	user, err := ExtractUserFromContext(c.Request.Context())
	if err != nil {
		return nil
	}
	return user
}
