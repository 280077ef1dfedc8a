package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clicker")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 5*time.Second, cfg.RepoTimeout)
	assert.Equal(t, 30*time.Second, cfg.ClickMaxSkew)
	assert.Equal(t, int64(100), cfg.MaxClicks)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clicker")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLICK_MAX_SKEW", "10s")
	t.Setenv("GAME_TIMEZONE", "Europe/Moscow")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.ClickMaxSkew)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestParseRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Parse()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/clicker")
	t.Setenv("JWT_SECRET", "")
	_, err = Parse()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestParseRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clicker")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GAME_TIMEZONE", "Mars/Olympus")
	_, err := Parse()
	assert.Error(t, err)
}
