package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top players by balance
func (h *Handler) GetLeaderboard(c *gin.Context) {
	top, err := h.Leaderboard.Top(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": top})
}
