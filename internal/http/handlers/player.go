package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPlayer returns the profile with regeneration applied.
func (h *Handler) GetPlayer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.Game.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Sync(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req SyncRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Game.Sync(c.Request.Context(), userID, *req.Energy, int64(*req.Balance))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Click(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req := ClickRequest{maxClicks: h.MaxClicks}
	if !bind(c, &req) {
		return
	}
	res, err := h.Game.Click(c.Request.Context(), userID, *req.Clicks, req.at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
