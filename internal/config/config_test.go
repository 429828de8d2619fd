package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STUDIO_ADDR", "DATABASE_URL", "STUDIO_FRAME_INTERVAL", "STUDIO_START_SPEED", "STUDIO_MARKET_VOLATILITY", "STUDIO_LOG_LEVEL", "STUDIO_GAME_DAYS_PER_SECOND", "STUDIO_RESTORE_SNAPSHOT"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadServerFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 1, cfg.StartSpeed)
	assert.Equal(t, "normal", cfg.MarketVolatility)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.RestoreSnapshot)
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STUDIO_FRAME_INTERVAL", "40ms")
	t.Setenv("STUDIO_START_SPEED", "4")
	t.Setenv("STUDIO_MARKET_VOLATILITY", "WILD")
	t.Setenv("STUDIO_LOG_LEVEL", "debug")
	t.Setenv("STUDIO_GAME_DAYS_PER_SECOND", "2.5")
	t.Setenv("STUDIO_RESTORE_SNAPSHOT", "false")

	cfg, err := LoadServerFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 40*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 4, cfg.StartSpeed)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.RestoreSnapshot)

	gc := cfg.GameConfig()
	assert.Equal(t, 2.5, gc.GameDaysPerRealSecond)
	assert.Equal(t, 1.6, gc.VolatilityScale)
	assert.Equal(t, 30, gc.DaysPerMonth)
}

func TestLoadServerRejectsBadValues(t *testing.T) {
	t.Setenv("STUDIO_START_SPEED", "-2")
	_, err := LoadServerFromEnv()
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLogLevel(" Warning "))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("chatty"))
}
