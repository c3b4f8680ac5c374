// Package middleware holds the gin middleware chain: CORS, rate
// limiting, and structured request logging. Grounded on the teacher's
// internal/middleware/middleware.go, which hand-rolls all three as
// package-level functions returning gin.HandlerFunc — kept here, with
// the hand-rolled header-setting and demo token check replaced by the
// libraries the teacher's own go.mod already names but never wires.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS replaces the teacher's hand-rolled Access-Control-* header
// writes with rs/cors, configured from ALLOWED_ORIGINS rather than a
// hardcoded "*".
func CORS(allowedOrigins []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With", "Idempotency-Key"},
		AllowCredentials: true,
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

// SecurityHeaders keeps the teacher's security header set verbatim —
// none of these depend on anything the teacher's demo scope lacked.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
