// Package session owns the per-kiosk running order. A [Session] applies
// parsed transcripts and explicit edits to the order; a [Manager] tracks the
// live sessions of all kiosks in the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/observe"
	"github.com/hanwoori/sorikiosk/internal/order"
	"github.com/hanwoori/sorikiosk/internal/orderstore"
)

// ErrEmptyOrder is returned by [Session.Confirm] when there is nothing to
// submit.
var ErrEmptyOrder = errors.New("session: order is empty")

// Snapshot is the kiosk-facing view of a running order after an update.
type Snapshot struct {
	KioskID string       `json:"kiosk_id"`
	Lang    menu.Lang    `json:"lang"`
	Lines   []order.Line `json:"lines"`
	Total   int          `json:"total"`
}

// Session holds one kiosk's running order. Kiosk events arrive sequentially
// over a single WebSocket, so a plain mutex is enough; the lock exists for
// concurrent REST reads, not for event ordering.
type Session struct {
	kioskID string
	lang    menu.Lang
	parser  *order.Parser
	catalog func() *menu.Catalog
	store   orderstore.Store
	metrics *observe.Metrics

	mu    sync.Mutex
	lines []order.Line
}

// HandleFinal parses a final transcript and merges the resolved candidates
// into the running order. Degraded results are returned for the kiosk to
// display ("did you mean ...?") but never merged automatically.
func (s *Session) HandleFinal(ctx context.Context, transcript string) (*order.Result, Snapshot, error) {
	start := time.Now()
	res, err := s.parser.Parse(transcript, s.lang, s.catalog())
	s.metrics.ParseDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("language", string(s.lang))))
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("session %s: %w", s.kioskID, err)
	}

	s.recordParse(ctx, res)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !res.Degraded {
		s.lines = order.Merge(s.lines, res.Candidates)
	}
	return res, s.snapshotLocked(), nil
}

// recordParse emits per-parse metrics and a debug log line.
func (s *Session) recordParse(ctx context.Context, res *order.Result) {
	lang := string(s.lang)

	perMethod := make(map[string]int, 2)
	for _, c := range res.Candidates {
		perMethod[c.Method]++
		if c.Ambiguous {
			s.metrics.RecordAmbiguousQuantity(ctx, lang)
			slog.Warn("ambiguous quantity resolved by last match",
				"kiosk", s.kioskID, "lang", lang, "keyword", c.Keyword)
		}
	}
	for method, n := range perMethod {
		s.metrics.RecordCandidates(ctx, lang, method, n)
	}
	if res.Degraded || len(res.Candidates) == 0 {
		s.metrics.RecordNoMatch(ctx, lang)
	}

	slog.Debug("transcript parsed",
		"kiosk", s.kioskID,
		"lang", lang,
		"candidates", len(res.Candidates),
		"confidence", res.Confidence,
		"degraded", res.Degraded)
}

// SetQuantity replaces the quantity of the line for entryID. Zero or below
// removes the line.
func (s *Session) SetQuantity(entryID string, quantity int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = order.SetQuantity(s.lines, entryID, quantity)
	return s.snapshotLocked()
}

// Remove drops the line for entryID. Removing an absent line is a no-op.
func (s *Session) Remove(entryID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = order.RemoveLine(s.lines, entryID)
	return s.snapshotLocked()
}

// Reset clears the running order.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return s.snapshotLocked()
}

// Snapshot returns the current running order.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Confirm prices the running order, submits it to the order archive and
// clears the session. The archived record is returned for the receipt.
func (s *Session) Confirm(ctx context.Context) (*orderstore.Record, error) {
	s.mu.Lock()
	lines := make([]order.Line, len(s.lines))
	copy(lines, s.lines)
	s.mu.Unlock()

	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	rec := orderstore.NewRecord(s.kioskID, s.lang, lines)
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("session %s: confirm: %w", s.kioskID, err)
	}

	s.metrics.RecordOrderConfirmed(ctx, rec.TotalPrice)
	slog.Info("order confirmed",
		"kiosk", s.kioskID, "order_id", rec.ID, "total", rec.TotalPrice, "lines", len(rec.Lines))

	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
	return rec, nil
}

// snapshotLocked builds a Snapshot. Callers must hold s.mu.
func (s *Session) snapshotLocked() Snapshot {
	lines := make([]order.Line, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{
		KioskID: s.kioskID,
		Lang:    s.lang,
		Lines:   lines,
		Total:   order.TotalPrice(lines),
	}
}
