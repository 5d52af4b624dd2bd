package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"explorer/backend/internal/models"
)

const (
	contextUserKey      = "current_user"
	contextRequestIDKey = "request_id"
)

// RequestID tags every request with a unique id for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(contextRequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// Authenticate resolves the caller from the Bearer token. The token
// proves identity only; the role used for authorization is re-read
// from the database so revoked privileges take effect immediately.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header format"})
			return
		}

		h.authenticateToken(c, parts[1])
	}
}

// AuthenticateQuery is the websocket variant: browsers cannot set an
// Authorization header on an upgrade request, so the token travels in
// the query string.
func (h *Handler) AuthenticateQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "token query parameter required"})
			return
		}
		h.authenticateToken(c, token)
	}
}

func (h *Handler) authenticateToken(c *gin.Context, token string) {
	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token"})
		return
	}

	user, err := h.users.FindByUsername(claims.Subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User no longer exists"})
		return
	}

	c.Set(contextUserKey, user)
	c.Next()
}

// RequireAdmin rejects callers whose current role is not admin. Must
// run after Authenticate.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Admin privileges required"})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user set by Authenticate,
// or nil on unauthenticated routes.
func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
