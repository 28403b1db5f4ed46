package handler

import (
	"io"
	"time"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 30 * time.Second

// StreamNotifications godoc
// @Summary      Notification stream
// @Description  Server-sent events for the current user: follow, unfollow and publication events.
// @Tags         notifications
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/stream [get]
func StreamNotifications(c *gin.Context) {
	userID := auth.UserID(c)

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(userID, client)
	defer hub.GlobalHub.Unsubscribe(userID, client)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}
