package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blockScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS block_events (
	id             BIGSERIAL PRIMARY KEY,
	fingerprint    TEXT UNIQUE,
	kind           TEXT NOT NULL,
	slot           BIGINT,
	block_hash     TEXT,
	block_number   BIGINT,
	tx_idx         INTEGER,
	tx_hash        TEXT,
	context        JSONB NOT NULL,
	payload        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS block_events_slot_idx ON block_events (slot);
CREATE INDEX IF NOT EXISTS block_events_tx_hash_idx ON block_events (tx_hash);
`

// Store persists crawl events into Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the events table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Accept(ctx context.Context, ev model.Event) error {
	return s.AcceptBatch(ctx, []model.Event{ev})
}

// Replayable is true when every event carries a fingerprint, since the
// unique fingerprint column drops rows that were already inserted.
func (s *Store) Replayable(events []model.Event) bool {
	for _, ev := range events {
		if ev.Fingerprint == nil {
			return false
		}
	}
	return true
}

// AcceptBatch inserts events in one round trip. Events whose fingerprint
// was already stored are skipped.
func (s *Store) AcceptBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		row, err := toRow(ev)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO block_events (
				fingerprint, kind, slot, block_hash, block_number, tx_idx, tx_hash, context, payload
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (fingerprint) DO NOTHING
		`,
			row.fingerprint,
			row.kind,
			row.slot,
			row.blockHash,
			row.blockNumber,
			row.txIdx,
			row.txHash,
			row.context,
			row.payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LastSlot returns the highest slot stored.
func (s *Store) LastSlot(ctx context.Context) (uint64, bool, error) {
	var slot *int64
	row := s.pool.QueryRow(ctx, `SELECT max(slot) FROM block_events`)
	if err := row.Scan(&slot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if slot == nil {
		return 0, false, nil
	}
	return uint64(*slot), true, nil
}

type eventRow struct {
	fingerprint *string
	kind        string
	slot        *int64
	blockHash   *string
	blockNumber *int64
	txIdx       *int32
	txHash      *string
	context     []byte
	payload     []byte
}

func toRow(ev model.Event) (eventRow, error) {
	if ev.Data == nil {
		return eventRow{}, fmt.Errorf("event without data")
	}
	ctxDoc, err := json.Marshal(ev.Context)
	if err != nil {
		return eventRow{}, fmt.Errorf("marshal event context: %w", err)
	}
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return eventRow{}, fmt.Errorf("marshal event payload: %w", err)
	}

	c := ev.Context
	row := eventRow{
		fingerprint: ev.Fingerprint,
		kind:        ev.Data.Kind().Key(),
		blockHash:   c.BlockHash,
		txHash:      c.TxHash,
		context:     ctxDoc,
		payload:     payload,
	}
	if c.Slot != nil {
		v := int64(*c.Slot)
		row.slot = &v
	}
	if c.BlockNumber != nil {
		v := int64(*c.BlockNumber)
		row.blockNumber = &v
	}
	if c.TxIdx != nil {
		v := int32(*c.TxIdx)
		row.txIdx = &v
	}
	return row, nil
}
