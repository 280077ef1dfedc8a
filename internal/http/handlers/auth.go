package handlers

import (
	"context"
	"net/http"

	"clicker_game/internal/service"

	"github.com/gin-gonic/gin"
)

// auditCtx carries the client address into auth audit entries.
func auditCtx(c *gin.Context) context.Context {
	return service.WithClientInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Auth.Register(auditCtx(c), req.Email, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Auth.Login(auditCtx(c), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// TelegramAuth logs in with Telegram WebApp init data.
func (h *Handler) TelegramAuth(c *gin.Context) {
	var req TelegramAuthRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Auth.TelegramLogin(auditCtx(c), req.InitData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Auth.Logout(auditCtx(c), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	u, err := h.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
