package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Component states reported by /readyz.
const (
	stateUp       = "up"
	stateDown     = "down"
	stateDegraded = "degraded"
)

// HealthHandler serves the probes. Postgres is required; Redis only
// degrades the service (limiters fail open, leaderboard skips the cache).
type HealthHandler struct {
	db        Pinger
	redis     *redis.Client
	startedAt time.Time
	version   string
}

// NewHealthHandler creates a new health handler. rdb may be nil.
func NewHealthHandler(db Pinger, rdb *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, startedAt: time.Now(), version: version}
}

type componentState struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status     string                    `json:"status"`
	Version    string                    `json:"version"`
	Uptime     string                    `json:"uptime"`
	Components map[string]componentState `json:"components"`
}

// Liveness: процесс жив, зависимости не проверяем.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports every dependency and answers 503 while Postgres is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := map[string]componentState{"postgres": probe(ctx, h.db.Ping, stateDown)}
	if h.redis != nil {
		components["redis"] = probe(ctx, func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }, stateDegraded)
	}

	status, code := "ready", http.StatusOK
	if components["postgres"].State != stateUp {
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if components["redis"].State == stateDegraded {
		status = stateDegraded
	}

	c.JSON(code, readinessResponse{
		Status:     status,
		Version:    h.version,
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Components: components,
	})
}

// Health is the short form used by load balancers.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": stateDown, "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func probe(ctx context.Context, ping func(context.Context) error, failState string) componentState {
	if err := ping(ctx); err != nil {
		return componentState{State: failState, Error: err.Error()}
	}
	return componentState{State: stateUp}
}
