package handler

import (
	"io"

	"carlink/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// Stream godoc
// @Summary      Subscribe to real-time events
// @Description  Opens a server-sent-events stream on the authenticated user's private channel. NewMessage and NotificationEvent payloads are delivered as they occur; nothing is replayed.
// @Tags         realtime
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Router       /stream [get]
func Stream(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	userID := viewerID.(uint)

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(userID, client)
	defer hub.GlobalHub.Unsubscribe(userID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
