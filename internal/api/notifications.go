package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/auth"
)

// ListNotifications handles GET /api/notifications, spec §6.1. The
// ?unread_only=true query flag narrows the page to unread items.
func (h *Handlers) ListNotifications(c *gin.Context) {
	identity := auth.MustIdentity(c)
	page, limit := pagination(c)
	items, total, err := h.Notifications.List(c.Request.Context(), identity.User.ID, page, limit, c.Query("unread_only") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *Handlers) UnreadCount(c *gin.Context) {
	identity := auth.MustIdentity(c)
	count, err := h.Notifications.UnreadCount(c.Request.Context(), identity.User.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkNotificationRead handles PATCH /api/notifications/{id}/read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	identity := auth.MustIdentity(c)
	if err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id"), identity.User.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles PATCH /api/notifications/read-all.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	identity := auth.MustIdentity(c)
	if err := h.Notifications.MarkAllRead(c.Request.Context(), identity.User.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotification handles the supplemented DELETE /api/notifications/{id}.
func (h *Handlers) DeleteNotification(c *gin.Context) {
	identity := auth.MustIdentity(c)
	if err := h.Notifications.Delete(c.Request.Context(), c.Param("id"), identity.User.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
