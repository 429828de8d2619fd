package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstudio/internal/game"
	"devstudio/internal/savegame"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulateAdvancesRequestedDays(t *testing.T) {
	cfg := game.DefaultConfig()
	res, err := simulate(cfg, game.NewGame(cfg), 7, 10, 3, quietLogger())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Stats.Days, 3.0)
	assert.Positive(t, res.Stats.Ticks)
	assert.NotEqual(t, res.Start.Date, res.Final.Date)
	assert.Equal(t, game.StarterMoney, res.Start.Money)
}

func TestSessionControls(t *testing.T) {
	cfg := game.DefaultConfig()
	path := filepath.Join(t.TempDir(), "save.json")
	s := newSession(cfg, game.NewGame(cfg), 1, path, quietLogger())

	s.togglePause()
	assert.Zero(t, s.mem.Speed())
	s.togglePause()
	assert.Equal(t, 1, s.mem.Speed())

	s.shiftSpeed(1)
	assert.Equal(t, 2, s.mem.Speed())
	s.shiftSpeed(-1)
	s.shiftSpeed(-1)
	assert.Equal(t, 1, s.mem.Speed())

	s.hireNext()
	s.hireNext()
	s.quickProject()
	st := s.mem.Snapshot()
	require.Len(t, st.Employees, 2)
	require.Len(t, st.Projects, 1)
	assert.True(t, st.Projects[0].Active())
	assert.Len(t, st.Team(st.Projects[0].ID), 2)

	now := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.save(now))
	loaded, err := savegame.Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Employees, 2)
	assert.Equal(t, now, s.savedAt)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", formatMoney(1234567.891))
	assert.Equal(t, "-$12.50", formatMoney(-12.5))
	assert.Equal(t, "$0.00", formatMoney(0))
}
