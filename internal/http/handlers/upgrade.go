package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListUpgrades returns the catalog with the caller's level and next cost.
func (h *Handler) ListUpgrades(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	offers, err := h.Game.ListUpgrades(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *Handler) PurchaseUpgrade(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req PurchaseUpgradeRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Game.PurchaseUpgrade(c.Request.Context(), userID, *req.UpgradeID, *req.ExpectedCost)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
