package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devstudio/internal/game"
)

// Persister is the write side of a durable journal.
type Persister interface {
	SaveSnapshot(ctx context.Context, st game.State) error
	Flush(ctx context.Context, entries []LedgerEntry, prices []PriceSample) error
}

// PersistJob flushes the in-memory ledger and price samples, then saves a snapshot.
type PersistJob struct {
	mem     *Memory
	journal Persister
	log     *slog.Logger
	timeout time.Duration
}

// NewPersistJob also switches mem's journal on.
func NewPersistJob(mem *Memory, journal Persister, logger *slog.Logger) *PersistJob {
	if logger == nil {
		logger = slog.Default()
	}
	mem.EnableJournal()
	return &PersistJob{mem: mem, journal: journal, log: logger, timeout: 30 * time.Second}
}

func (j *PersistJob) Name() string {
	return "persist"
}

func (j *PersistJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.RunContext(ctx)
}

func (j *PersistJob) RunContext(ctx context.Context) error {
	entries := j.mem.DrainLedger()
	prices := j.mem.DrainPrices()
	if err := j.journal.Flush(ctx, entries, prices); err != nil {
		j.mem.Requeue(entries, prices)
		return fmt.Errorf("flush journal: %w", err)
	}
	st := j.mem.Snapshot()
	if err := j.journal.SaveSnapshot(ctx, st); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	j.log.Info("state persisted", "date", st.Date.String(), "ledger_entries", len(entries), "prices", len(prices))
	return nil
}
