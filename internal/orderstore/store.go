// Package orderstore persists confirmed kiosk orders. Two implementations
// exist: a PostgreSQL-backed [PGStore] for production and an append-only
// JSON-lines [FileStore] for single-kiosk deployments without a database.
package orderstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/order"
)

// Status tracks an order through the kitchen workflow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is a recognised order status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusCompleted:
		return true
	}
	return false
}

// LineRecord is one priced order line as archived. Prices are denormalised
// at confirmation time so later menu edits never change past receipts.
type LineRecord struct {
	EntryID   string   `json:"entry_id"`
	Name      string   `json:"name"`
	UnitPrice int      `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	Options   []string `json:"options,omitempty"`
}

// Record is a confirmed order as persisted by a [Store].
type Record struct {
	ID         string       `json:"id"`
	KioskID    string       `json:"kiosk_id"`
	Lang       menu.Lang    `json:"lang"`
	Lines      []LineRecord `json:"lines"`
	TotalPrice int          `json:"total_price"`
	Status     Status       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Store archives confirmed orders and serves them back for the kitchen
// display and the recommendation ranking.
type Store interface {
	// Create persists a new order record. The record's timestamps are
	// assigned by the store.
	Create(ctx context.Context, rec *Record) error

	// Recent returns up to limit orders created within the given window,
	// newest first.
	Recent(ctx context.Context, window time.Duration, limit int) ([]Record, error)

	// UpdateStatus moves an order to a new workflow status.
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// NewRecord builds an unsaved Record from a confirmed running order.
// Line prices and names are copied out of the catalog entries so the
// archived order is self-contained.
func NewRecord(kioskID string, lang menu.Lang, lines []order.Line) *Record {
	rec := &Record{
		ID:      uuid.NewString(),
		KioskID: kioskID,
		Lang:    lang,
		Lines:   make([]LineRecord, 0, len(lines)),
		Status:  StatusPending,
	}
	for _, l := range lines {
		if l.Entry == nil || l.Quantity <= 0 {
			continue
		}
		rec.Lines = append(rec.Lines, LineRecord{
			EntryID:   l.Entry.ID,
			Name:      l.Entry.LocalName(lang),
			UnitPrice: l.Entry.Price,
			Quantity:  l.Quantity,
			Options:   l.Options,
		})
		rec.TotalPrice += l.Entry.Price * l.Quantity
	}
	return rec
}
