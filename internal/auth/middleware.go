package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

const identityContextKey = "identity"

// RequireAuth generalizes the teacher's AuthMiddleware: same
// Authorization-header/Bearer-prefix shape, but the token is actually
// verified and the resulting Identity (not a hardcoded user_id/role
// pair) is attached to the request context.
func RequireAuth(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondUnauthenticated(c, "authorization header required")
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			respondUnauthenticated(c, "invalid authorization header format")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			respondUnauthenticated(c, "token required")
			return
		}

		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			appErr := apperr.As(err)
			c.JSON(appErr.Status(), gin.H{"error": appErr.Message, "kind": appErr.Kind})
			c.Abort()
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		identity := MustIdentity(c)
		if !allowed[identity.Role] {
			c.JSON(apperr.New(apperr.KindForbidden, "role not permitted").Status(),
				gin.H{"error": "role not permitted"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireVerified must run after RequireAuth.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := MustIdentity(c)
		if !identity.Verified {
			c.JSON(apperr.New(apperr.KindForbidden, "account not verified").Status(),
				gin.H{"error": "account not verified"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func respondUnauthenticated(c *gin.Context, message string) {
	c.JSON(401, gin.H{"error": message})
	c.Abort()
}

// Identity reads the Identity attached by RequireAuth, for handlers
// and the websocket handshake alike.
func Identity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok
}

// MustIdentity panics if called outside RequireAuth's scope — a
// programmer error, not a request-time condition.
func MustIdentity(c *gin.Context) *Identity {
	identity, ok := Identity(c)
	if !ok {
		panic("auth.MustIdentity called without RequireAuth in the chain")
	}
	return identity
}
