package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tasks, err := h.Game.ListTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) ClaimTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req ClaimTaskRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Game.ClaimTaskReward(c.Request.Context(), userID, *req.TaskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
