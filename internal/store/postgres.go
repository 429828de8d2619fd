package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"devstudio/internal/game"
)

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS studio;

CREATE TABLE IF NOT EXISTS studio.snapshots (
	id         BIGSERIAL PRIMARY KEY,
	game_date  TEXT NOT NULL,
	money      DOUBLE PRECISION NOT NULL,
	state      JSONB NOT NULL,
	saved_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS studio.ledger_entries (
	id         UUID PRIMARY KEY,
	tx_group_id UUID NOT NULL,
	kind       TEXT NOT NULL,
	amount     DOUBLE PRECISION NOT NULL,
	game_date  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS studio.stock_prices (
	stock_id   TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	game_date  TEXT NOT NULL,
	tick_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS stock_prices_stock_tick_idx ON studio.stock_prices (stock_id, tick_at DESC);
`

// Journal persists snapshots, the money ledger and price history to Postgres.
type Journal struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewJournal(db *pgxpool.Pool, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: db, log: logger}
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (j *Journal) SaveSnapshot(ctx context.Context, st game.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = j.db.Exec(ctx, `
		INSERT INTO studio.snapshots (game_date, money, state)
		VALUES ($1, $2, $3::jsonb)
	`, st.Date.String(), st.Money, string(raw))
	return err
}

// LatestSnapshot returns the newest saved state. ok is false when nothing was saved yet.
func (j *Journal) LatestSnapshot(ctx context.Context) (st game.State, ok bool, err error) {
	var raw []byte
	err = j.db.QueryRow(ctx, `
		SELECT state
		FROM studio.snapshots
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.State{}, false, nil
	}
	if err != nil {
		return game.State{}, false, err
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return game.State{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return st, true, nil
}

// Flush writes ledger entries and price samples in one serializable transaction, retrying on
// serialization conflicts.
func (j *Journal) Flush(ctx context.Context, entries []LedgerEntry, prices []PriceSample) error {
	if len(entries) == 0 && len(prices) == 0 {
		return nil
	}
	const attempts = 3
	var err error
	for i := 0; i < attempts; i++ {
		err = j.flushOnce(ctx, entries, prices)
		if err == nil || !isSerializationError(err) {
			return err
		}
		if err := sleepWithContext(ctx, time.Duration(i+1)*50*time.Millisecond); err != nil {
			return err
		}
	}
	return err
}

func (j *Journal) flushOnce(ctx context.Context, entries []LedgerEntry, prices []PriceSample) error {
	tx, err := j.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(entries) > 0 {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(`
				INSERT INTO studio.ledger_entries (id, tx_group_id, kind, amount, game_date, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING
			`, e.ID, e.GroupID, e.Kind, e.Amount, e.Date.String(), e.At)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("append ledger: %w", err)
		}
	}

	if len(prices) > 0 {
		rows := make([][]any, 0, len(prices))
		for _, p := range prices {
			rows = append(rows, []any{p.StockID, p.Price, p.Date.String(), p.At})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"studio", "stock_prices"},
			[]string{"stock_id", "price", "game_date", "tick_at"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("append prices: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// PriceHistory returns up to limit recent prices for a stock, newest first.
func (j *Journal) PriceHistory(ctx context.Context, stockID string, limit int) ([]PriceSample, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := j.db.Query(ctx, `
		SELECT stock_id, price, tick_at
		FROM studio.stock_prices
		WHERE stock_id = $1
		ORDER BY tick_at DESC
		LIMIT $2
	`, stockID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PriceSample, 0, limit)
	for rows.Next() {
		var p PriceSample
		if err := rows.Scan(&p.StockID, &p.Price, &p.At); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
