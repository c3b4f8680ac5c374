package api

import (
	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/auth"
)

// RealtimeUpgrade handles GET /api/realtime/ws, spec §4.8/§6.1. It sits
// behind the same auth.RequireAuth middleware as every REST route, so
// the handshake's bearer token is already verified and the caller's
// identity already attached by the time HandleUpgrade takes over the
// connection.
func (h *Handlers) RealtimeUpgrade(c *gin.Context) {
	identity := auth.MustIdentity(c)
	h.Hub.HandleUpgrade(c.Writer, c.Request, identity.User.ID)
}
