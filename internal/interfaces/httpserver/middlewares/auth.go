package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain"
	"jan-server/services/report-api/internal/infrastructure/auth"
)

const principalContextKey = "principal"

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Enabled() bool
	Anonymous() domain.Principal
	Authenticate(header string) (domain.Principal, error)
}

var _ Authenticator = (*auth.Validator)(nil)

// AuthMiddleware validates JWT bearer tokens. With auth disabled every request
// runs as the anonymous principal carrying the default capabilities.
func AuthMiddleware(authenticator Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticator.Enabled() {
			setPrincipal(c, authenticator.Anonymous())
			c.Next()
			return
		}

		principal, err := authenticator.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn().
				Err(err).
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authentication required",
			})
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireCapability aborts with 403 unless the principal holds capability.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !EnsureCapability(c, capability) {
			return
		}
		c.Next()
	}
}

// EnsureCapability writes the 401/403 response and aborts when the caller
// lacks capability. Handlers use it when the capability depends on the body.
func EnsureCapability(c *gin.Context, capability string) bool {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.ID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Authentication required",
		})
		return false
	}
	if !principal.Has(capability) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "missing capability " + capability,
		})
		return false
	}
	return true
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

// GetUserIDFromContext returns the principal id or an empty string.
func GetUserIDFromContext(c *gin.Context) string {
	principal, _ := PrincipalFromContext(c)
	return principal.ID
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("user_id", principal.ID)
	c.Writer.Header().Set("X-Principal-Id", principal.ID)
	c.Writer.Header().Set("X-Auth-Method", string(principal.AuthMethod))
}
