package handlers

import (
	"log/slog"
	"net/http"

	"dating-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *websocket.Hub
	log *slog.Logger
}

func NewWSHandler(hub *websocket.Hub, log *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

// HandleWebSocket upgrades an authenticated request to a websocket
// connection and attaches it to the hub. The user id comes from the
// token middleware, never from the client payload.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := websocket.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	h.log.Info("websocket connected", "user_id", userID)
	websocket.ServeWS(h.hub, conn, userID)
}
