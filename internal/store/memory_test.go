package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstudio/internal/game"
)

type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory(game.DefaultConfig(), game.NewGame(game.DefaultConfig()), nil)
	m.now = func() time.Time { return fixedNow }
	return m
}

func newTestEngine() *game.Engine {
	return game.NewEngine(game.DefaultConfig(), constRand(0.5), nil, game.WithNow(func() time.Time { return fixedNow }))
}

func TestSnapshotIsDetached(t *testing.T) {
	m := newTestMemory(t)
	snap := m.Snapshot()
	snap.Money = -1
	snap.Stocks[0].Price = 999
	snap.Portfolio.Holdings["PIXL"] = game.Holding{Quantity: 5}

	again := m.Snapshot()
	assert.Equal(t, game.StarterMoney, again.Money)
	assert.NotEqual(t, 999.0, again.Stocks[0].Price)
	assert.Empty(t, again.Portfolio.Holdings)
}

func TestAdvanceAppliesAndJournals(t *testing.T) {
	m := newTestMemory(t)
	m.EnableJournal()
	_, err := m.Hire("cand-01")
	require.NoError(t, err)
	m.DrainLedger()

	eng := newTestEngine()
	for i := 0; i < 10; i++ {
		_, err := m.Advance(eng, 0.5)
		require.NoError(t, err)
	}

	st := m.Snapshot()
	assert.Equal(t, game.Date{Day: 6, Month: 1, Year: 2000}, st.Date)
	assert.True(t, st.AchievementUnlocked("first-hire"))

	kinds := map[string]int{}
	for _, e := range m.DrainLedger() {
		kinds[e.Kind]++
	}
	assert.Equal(t, 10, kinds["payroll"])
	assert.Equal(t, 1, kinds["achievement_reward"])
	assert.Empty(t, m.DrainLedger(), "drain empties the ledger")
	assert.NotEmpty(t, m.DrainPrices())
}

func TestJournalOffWithoutPersister(t *testing.T) {
	m := newTestMemory(t)
	_, err := m.Hire("cand-01")
	require.NoError(t, err)
	_, err = m.BuyStock("PIXL", 2)
	require.NoError(t, err)

	eng := game.NewEngine(game.DefaultConfig(), game.NewRand(1), nil, game.WithNow(func() time.Time { return fixedNow }))
	for i := 0; i < 5_000; i++ {
		_, err := m.Advance(eng, 0.05)
		require.NoError(t, err)
	}
	assert.Empty(t, m.DrainLedger())
	assert.Empty(t, m.DrainPrices())

	m.EnableJournal()
	_, err = m.Advance(eng, 0.05)
	require.NoError(t, err)
	assert.NotEmpty(t, m.DrainLedger(), "payroll is booked once journaling is on")
}

func TestAdvanceRejectsBadProgress(t *testing.T) {
	m := newTestMemory(t)
	before := m.Snapshot()
	_, err := m.Advance(newTestEngine(), -1)
	require.ErrorIs(t, err, game.ErrInvalidDayProgress)
	assert.Equal(t, before, m.Snapshot())
}

func TestSubscribeReceivesNotifications(t *testing.T) {
	m := newTestMemory(t)
	ch, cancel := m.Subscribe(4)
	defer cancel()

	m.Apply(game.Envelope{Notifications: []game.Notification{{ID: "n1", Message: "hello"}}})
	select {
	case n := <-ch:
		assert.Equal(t, "hello", n.Message)
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	m.Apply(game.Envelope{Notifications: []game.Notification{{ID: "n2"}}})
}

func TestRestoreReplacesState(t *testing.T) {
	m := newTestMemory(t)
	st := game.NewGame(game.DefaultConfig())
	st.Money = 123
	st.Portfolio.Holdings = nil
	m.Restore(st)

	got := m.Snapshot()
	assert.Equal(t, 123.0, got.Money)
	assert.NotNil(t, got.Portfolio.Holdings)
}

type fakeJournal struct {
	flushErr  error
	flushed   []LedgerEntry
	prices    []PriceSample
	snapshots []game.State
}

func (f *fakeJournal) SaveSnapshot(_ context.Context, st game.State) error {
	f.snapshots = append(f.snapshots, st)
	return nil
}

func (f *fakeJournal) Flush(_ context.Context, entries []LedgerEntry, prices []PriceSample) error {
	if f.flushErr != nil {
		return f.flushErr
	}
	f.flushed = append(f.flushed, entries...)
	f.prices = append(f.prices, prices...)
	return nil
}

func TestPersistJob(t *testing.T) {
	m := newTestMemory(t)
	j := &fakeJournal{flushErr: errors.New("db down")}
	job := NewPersistJob(m, j, nil)
	_, err := m.BuyStock("PIXL", 10)
	require.NoError(t, err)

	assert.Equal(t, "persist", job.Name())
	require.Error(t, job.Run())
	assert.Empty(t, j.snapshots)

	j.flushErr = nil
	require.NoError(t, job.Run())
	require.Len(t, j.flushed, 1, "entries requeued after the failed run are flushed")
	assert.Equal(t, "stock_buy", j.flushed[0].Kind)
	require.Len(t, j.snapshots, 1)
	assert.Equal(t, int64(10), j.snapshots[0].Portfolio.Holdings["PIXL"].Quantity)
}
