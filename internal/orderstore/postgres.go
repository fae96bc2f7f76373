package orderstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface check.
var _ Store = (*PGStore)(nil)

const ddlOrders = `
CREATE TABLE IF NOT EXISTS orders (
    id          TEXT         PRIMARY KEY,
    kiosk_id    TEXT         NOT NULL,
    lang        TEXT         NOT NULL,
    lines       JSONB        NOT NULL DEFAULT '[]',
    total_price BIGINT       NOT NULL DEFAULT 0,
    status      TEXT         NOT NULL DEFAULT 'pending',
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_kiosk_id
    ON orders (kiosk_id);

CREATE INDEX IF NOT EXISTS idx_orders_created_at
    ON orders (created_at);

CREATE INDEX IF NOT EXISTS idx_orders_status
    ON orders (status);
`

// Migrate creates or ensures the orders table exists. It is idempotent
// (CREATE TABLE IF NOT EXISTS) and safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlOrders); err != nil {
		return fmt.Errorf("orderstore migrate: %w", err)
	}
	return nil
}

// PGStore is the PostgreSQL-backed order archive. Order lines are stored as
// a JSONB column; the archive is append-mostly and queried by time window,
// so no per-line table is needed.
//
// All methods are safe for concurrent use.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore establishes a connection pool to the database at dsn and runs
// [Migrate] to ensure the orders table exists.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("orderstore: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("orderstore: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("orderstore: migrate: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

// Close releases all connections held by the underlying pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// Create implements [Store].
func (s *PGStore) Create(ctx context.Context, rec *Record) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return fmt.Errorf("orderstore: marshal lines: %w", err)
	}

	const q = `
		INSERT INTO orders (id, kiosk_id, lang, lines, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err = s.pool.QueryRow(ctx, q,
		rec.ID,
		rec.KioskID,
		string(rec.Lang),
		lines,
		rec.TotalPrice,
		string(rec.Status),
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("orderstore: create: %w", err)
	}
	return nil
}

// Recent implements [Store].
func (s *PGStore) Recent(ctx context.Context, window time.Duration, limit int) ([]Record, error) {
	const q = `
		SELECT id, kiosk_id, lang, lines, total_price, status, created_at, updated_at
		FROM   orders
		WHERE  created_at >= now() - ($1::bigint * interval '1 microsecond')
		ORDER  BY created_at DESC
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, window.Microseconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("orderstore: recent: %w", err)
	}
	return collectRecords(rows)
}

// UpdateStatus implements [Store].
func (s *PGStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("orderstore: invalid status %q", status)
	}

	const q = `
		UPDATE orders
		SET    status = $2, updated_at = now()
		WHERE  id = $1`

	tag, err := s.pool.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("orderstore: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("orderstore: order %q not found", id)
	}
	return nil
}

// collectRecords scans pgx rows into a slice of Record values.
func collectRecords(rows pgx.Rows) ([]Record, error) {
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			r     Record
			lines []byte
		)
		if err := row.Scan(
			&r.ID,
			&r.KioskID,
			&r.Lang,
			&lines,
			&r.TotalPrice,
			&r.Status,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return Record{}, err
		}
		if err := json.Unmarshal(lines, &r.Lines); err != nil {
			return Record{}, err
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("orderstore: scan rows: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
