package handlers

import (
	"errors"
	"net/http"

	"clicker_game/internal/domain"
	"clicker_game/internal/http/middleware"
	"clicker_game/internal/logger"
	"clicker_game/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultMaxClicks = 100

type Handler struct {
	Game        *service.GameService
	Auth        *service.AuthService
	Leaderboard *service.LeaderboardService
	MaxClicks   int64
}

func NewHandler(game *service.GameService, auth *service.AuthService, leaderboard *service.LeaderboardService, maxClicks int64) *Handler {
	if maxClicks <= 0 {
		maxClicks = defaultMaxClicks
	}
	return &Handler{Game: game, Auth: auth, Leaderboard: leaderboard, MaxClicks: maxClicks}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// requireUser writes 401 and returns false when no user is authenticated.
func requireUser(c *gin.Context) (int64, bool) {
	userID, ok := getUserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, string(domain.KindUnauthorized), "Authentication required", nil)
		return 0, false
	}
	return userID, true
}

func statusForKind(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput, domain.KindInsufficientResource, domain.KindAlreadyDone, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a domain error to its status. Internal errors are logged
// and their message hidden.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		writeError(c, status, string(domain.KindInternal), "Internal server error", nil)
		return
	}

	var de *domain.Error
	errors.As(err, &de)
	writeError(c, status, string(kind), de.Message, nil)
}

func respondValidation(c *gin.Context, details []FieldError) {
	writeError(c, http.StatusBadRequest, string(domain.KindInvalidInput), "Validation failed", details)
}

func writeError(c *gin.Context, status int, code, message string, details []FieldError) {
	body := gin.H{"message": message, "code": code}
	if len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// bind decodes the JSON body and validates it, writing the 400 on failure.
func bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, []FieldError{{Field: "body", Message: "invalid JSON body"}})
		return false
	}
	if details := req.Validate(); len(details) > 0 {
		respondValidation(c, details)
		return false
	}
	return true
}
