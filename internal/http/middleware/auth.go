package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pms/internal/domain"
)

const principalKey = "principal"

// TokenParser validates a bearer token and rebuilds the principal.
type TokenParser func(token string) (domain.Principal, error)

// Authenticate resolves the request principal from the Authorization header.
// Without a token the request proceeds anonymously; a present-but-invalid
// token is always rejected.
func Authenticate(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(principalKey, domain.AnonymousPrincipal())
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		principal, err := parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. Mount after Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c).Anonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole admits principals whose role is at least min.
func RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if p.Anonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !p.Role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// Principal returns the request principal, anonymous when unset.
func Principal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.AnonymousPrincipal()
}
