package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clicker_game/internal/bot"
	"clicker_game/internal/clock"
	"clicker_game/internal/config"
	"clicker_game/internal/db"
	"clicker_game/internal/events"
	httpServer "clicker_game/internal/http"
	"clicker_game/internal/http/handlers"
	"clicker_game/internal/http/middleware"
	"clicker_game/internal/logger"
	"clicker_game/internal/repository"
	"clicker_game/internal/service"
	"clicker_game/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer logger.Sync()
	log := logger.Get()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := db.NewMigrator(dbPool).Up(); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
	}

	rdb := connectRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	middleware.InitRedisRateLimiter(rdb)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventExchange, log)
		if err != nil {
			// события не критичны для игры
			logger.Warn("amqp unavailable, game events disabled", "error", err)
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	clk := clock.Real{}
	store := repository.NewPgStore(dbPool)
	users := repository.NewUserRepository(dbPool)
	audit := service.NewAuditService(repository.NewAuditRepository(dbPool))
	hub := ws.NewHub()

	var refresh service.RefreshStore = service.StatelessRefreshStore{}
	if rdb != nil {
		refresh = service.NewRedisRefreshStore(rdb, log)
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clk)
	gameService := service.NewGameService(store, clk, service.Options{
		RepoTimeout:  cfg.RepoTimeout,
		ClickMaxSkew: cfg.ClickMaxSkew,
		Location:     cfg.Location(),
		Publisher:    publisher,
		Notifier:     hub,
		Audit:        audit,
		Logger:       log,
	})
	deps := httpServer.Deps{
		Game: gameService,
		Auth: service.NewAuthService(users, tokens, clk, service.AuthConfig{
			BotToken: cfg.BotToken,
			Refresh:  refresh,
			Audit:    audit,
			Logger:   log,
		}),
		Tokens:      tokens,
		Leaderboard: service.NewLeaderboardService(store, rdb, cfg.LeaderboardSize, cfg.LeaderboardTTL, log),
		Health:      handlers.NewHealthHandler(dbPool, rdb, cfg.AppVersion),
		Hub:         hub,
	}

	// Admin bot (optional)
	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled {
		adminService := service.NewAdminService(repository.NewAdminRepository(dbPool), store, users, gameService, clk, cfg.Location())
		b, err := bot.NewAdminBot(cfg.BotToken, adminService, cfg.AdminTelegramIDs)
		if err != nil {
			logger.Error("admin bot init failed", "error", err)
		} else {
			adminBot = b
			go adminBot.Start()
			logger.Info("admin bot started", "admins", len(cfg.AdminTelegramIDs))
		}
	}

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log.Named("http")))

	r.Use(cors.New(corsConfig(cfg.AllowedOrigins())))

	// /metrics
	p := ginprometheus.NewPrometheus("gin")
	p.Use(r)

	httpServer.RegisterRoutes(r, deps, httpServer.LimitsFromConfig(cfg), cfg.MaxClicks, cfg.AllowedOrigins())

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if adminBot != nil {
		adminBot.Stop()
	}

	logger.Info("server exited")
}

// corsConfig allows credentials only for an explicit origin list: browsers
// reject "*" together with credentials.
func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) > 0 {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	} else {
		c.AllowAllOrigins = true
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	c.ExposeHeaders = []string{"X-Request-ID"}
	c.MaxAge = 12 * time.Hour
	return c
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// limiters then fail open and the leaderboard reads straight from Postgres.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Get().Warn("redis unavailable, running without it", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
