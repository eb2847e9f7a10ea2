package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/entities"
)

// ContextKeyUser is the gin context key holding the resolved user.
const ContextKeyUser = "auth_user"

// Middleware authenticates requests from the Authorization bearer header.
type Middleware struct {
	service *Service
}

// NewMiddleware creates authentication middleware backed by the service.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireUser aborts the request unless a valid access token resolves to a
// known user. The user is stored in the context for handlers.
func (m *Middleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolve(c, m.service.ResolveUser)
		if !ok {
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireStaff additionally requires the resolved user to have staff
// privileges. Absence of the privilege is reported as not found.
func (m *Middleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolve(c, m.service.ResolveStaffUser)
		if !ok {
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

func (m *Middleware) resolve(c *gin.Context, resolveFn func(string) (*entities.User, error)) (*entities.User, bool) {
	token := extractBearerToken(c)
	if token == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}

	user, err := resolveFn(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		case errors.Is(err, ErrInvalidToken):
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "could not validate credentials"})
		case errors.Is(err, ErrStaffNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "could not find staff user"})
		case errors.Is(err, users.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "could not find user"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return nil, false
	}
	return user, true
}

// CurrentUser returns the authenticated user set by the middleware.
func CurrentUser(c *gin.Context) *entities.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := value.(*entities.User)
	if !ok {
		return nil
	}
	return user
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
