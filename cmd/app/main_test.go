package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preflight(t *testing.T, origins []string, from string) *httptest.ResponseRecorder {
	t.Helper()
	cfg := corsConfig(origins)
	require.NoError(t, cfg.Validate())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cors.New(cfg))
	r.POST("/api/v1/game/click", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/game/click", nil)
	req.Header.Set("Origin", from)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSWithoutOriginsHasNoCredentials(t *testing.T) {
	w := preflight(t, nil, "https://anywhere.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWithOriginsAllowsCredentials(t *testing.T) {
	w := preflight(t, []string{"https://game.example"}, "https://game.example")
	assert.Equal(t, "https://game.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	denied := preflight(t, []string{"https://game.example"}, "https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}
