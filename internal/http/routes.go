package http

import (
	"time"

	"clicker_game/internal/config"
	"clicker_game/internal/http/handlers"
	"clicker_game/internal/http/middleware"
	"clicker_game/internal/service"
	"clicker_game/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps are the wired services the routes need.
type Deps struct {
	Game        *service.GameService
	Auth        *service.AuthService
	Tokens      *service.TokenService
	Leaderboard *service.LeaderboardService
	Health      *handlers.HealthHandler
	Hub         *ws.Hub
}

// RateLimits configures the per-group limiters.
type RateLimits struct {
	API, Auth, Click                   int
	APIWindow, AuthWindow, ClickWindow time.Duration
}

func LimitsFromConfig(cfg *config.Config) RateLimits {
	return RateLimits{
		API:         cfg.APIRateLimit,
		APIWindow:   cfg.APIRateWindow,
		Auth:        cfg.AuthRateLimit,
		AuthWindow:  cfg.AuthRateWindow,
		Click:       cfg.ClickRateLimit,
		ClickWindow: cfg.ClickRateWindow,
	}
}

func RegisterRoutes(r *gin.Engine, d Deps, limits RateLimits, maxClicks int64, allowedOrigins []string) {
	h := handlers.NewHandler(d.Game, d.Auth, d.Leaderboard, maxClicks)

	// Health checks (no rate limiting)
	if d.Health != nil {
		r.GET("/health", d.Health.Health)
		r.GET("/healthz", d.Health.Liveness)
		r.GET("/readyz", d.Health.Readiness)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(limits.API, limits.APIWindow))
	registerAPIRoutes(v1, h, d, limits)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(limits.API, limits.APIWindow))
	registerAPIRoutes(api, h, d, limits)

	// WebSocket player updates
	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.Tokens, allowedOrigins))
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, d Deps, limits RateLimits) {
	jwt := middleware.JWT(d.Tokens)

	// Auth: в памяти процесса, чтобы лимит работал и без Redis
	authRL := middleware.SimpleRateLimit(limits.Auth, limits.AuthWindow)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authRL, h.Register)
		auth.POST("/login", authRL, h.Login)
		auth.POST("/refresh", authRL, h.Refresh)
		auth.POST("/logout", h.Logout)
		if d.Auth.TelegramEnabled() {
			auth.POST("/telegram", authRL, h.TelegramAuth)
		}
		auth.GET("/me", jwt, h.Me)
	}

	api.GET("/game/leaderboard", h.GetLeaderboard)

	game := api.Group("/game")
	game.Use(jwt)
	{
		game.GET("/player", h.GetPlayer)
		game.POST("/sync", h.Sync)
		game.POST("/click", middleware.GameRateLimit("click", limits.Click, limits.ClickWindow), h.Click)

		game.GET("/upgrades", h.ListUpgrades)
		game.POST("/upgrades/purchase", h.PurchaseUpgrade)

		game.GET("/daily-rewards", h.DailyRewards)
		game.POST("/daily-rewards/claim", h.ClaimDailyReward)

		game.GET("/tasks", h.ListTasks)
		game.POST("/tasks/claim", h.ClaimTask)
	}
}
