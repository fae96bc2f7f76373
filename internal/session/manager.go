package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/observe"
	"github.com/hanwoori/sorikiosk/internal/order"
	"github.com/hanwoori/sorikiosk/internal/orderstore"
)

// Manager tracks the live kiosk sessions. Sessions are created on first use
// and live until [Manager.End] (kiosk disconnect or idle timeout handled by
// the caller).
type Manager struct {
	parser  *order.Parser
	catalog func() *menu.Catalog
	store   orderstore.Store
	metrics *observe.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session Manager. catalog is called on every parse so
// hot-reloaded menus apply to running sessions; it must never return nil.
func NewManager(parser *order.Parser, catalog func() *menu.Catalog, store orderstore.Store, metrics *observe.Metrics) *Manager {
	return &Manager{
		parser:   parser,
		catalog:  catalog,
		store:    store,
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for kioskID in lang, creating it if needed.
// A language change on an existing session starts a fresh session: mixing
// languages inside one running order is not supported.
func (m *Manager) Get(ctx context.Context, kioskID string, lang menu.Lang) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[kioskID]; ok && s.lang == lang {
		return s
	}
	if old, ok := m.sessions[kioskID]; ok {
		slog.Info("session language changed, starting over",
			"kiosk", kioskID, "old_lang", old.lang, "new_lang", lang)
		m.metrics.ActiveSessions.Add(ctx, -1)
	}

	s := &Session{
		kioskID: kioskID,
		lang:    lang,
		parser:  m.parser,
		catalog: m.catalog,
		store:   m.store,
		metrics: m.metrics,
	}
	m.sessions[kioskID] = s
	m.metrics.ActiveSessions.Add(ctx, 1)
	slog.Info("session started", "kiosk", kioskID, "lang", lang)
	return s
}

// Lookup returns the session for kioskID without creating one.
func (m *Manager) Lookup(kioskID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[kioskID]
	return s, ok
}

// End removes the session for kioskID. Ending an absent session is a no-op.
func (m *Manager) End(ctx context.Context, kioskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[kioskID]; !ok {
		return
	}
	delete(m.sessions, kioskID)
	m.metrics.ActiveSessions.Add(ctx, -1)
	slog.Info("session ended", "kiosk", kioskID)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
