package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewFallsBackOnBadLevel(t *testing.T) {
	l, err := New(Config{Level: "loud", Encoding: "xml"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}

func TestPackageHelpersUseGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	defer Set(zap.NewNop())

	Info("player clicked", "player_id", int64(7), "clicks", 3)
	With("component", "test").Warnw("slow query")
	Named("repo").Debug("noop")

	require.Equal(t, 3, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "player clicked", first.Message)
	assert.Equal(t, int64(7), first.ContextMap()["player_id"])
	assert.Equal(t, "test", logs.All()[1].ContextMap()["component"])
	assert.Equal(t, "repo", logs.All()[2].LoggerName)
}
