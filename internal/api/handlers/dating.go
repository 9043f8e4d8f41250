package handlers

import (
	"net/http"

	"dating-service/internal/services"

	"github.com/gin-gonic/gin"
)

type DatingHandler struct {
	redisService *services.RedisService
}

func NewDatingHandler(redisService *services.RedisService) *DatingHandler {
	return &DatingHandler{redisService: redisService}
}

// OnlineCount reports how many users currently hold at least one live
// connection, read from the Redis presence mirror.
func (h *DatingHandler) OnlineCount(c *gin.Context) {
	count, err := h.redisService.OnlineUserCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read online users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"online": count})
}
