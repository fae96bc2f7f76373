// Package server exposes the kiosk gateway: a WebSocket endpoint for the
// voice session event stream and a small REST surface for menu, order edits,
// recommendations and operational probes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/observe"
	"github.com/hanwoori/sorikiosk/internal/orderstore"
	"github.com/hanwoori/sorikiosk/internal/recommend"
	"github.com/hanwoori/sorikiosk/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Server is the kiosk-facing HTTP server.
type Server struct {
	sessions  *session.Manager
	catalog   func() *menu.Catalog
	store     orderstore.Store
	recommend *recommend.Recommender
	metrics   *observe.Metrics
	checkers  []Checker
	languages map[menu.Lang]bool

	http *http.Server
}

// Option configures a [Server].
type Option func(*Server)

// WithCheckers registers readiness checkers evaluated by /readyz.
func WithCheckers(checkers ...Checker) Option {
	return func(s *Server) {
		s.checkers = append(s.checkers, checkers...)
	}
}

// WithLanguages restricts the languages kiosks may use. Without this option
// every supported language is accepted.
func WithLanguages(langs ...menu.Lang) Option {
	return func(s *Server) {
		if len(langs) == 0 {
			return
		}
		s.languages = make(map[menu.Lang]bool, len(langs))
		for _, l := range langs {
			s.languages[l] = true
		}
	}
}

// New creates a Server listening on addr. catalog is called per request so
// hot-reloaded menus are always served; it must never return nil.
func New(addr string, sessions *session.Manager, catalog func() *menu.Catalog, store orderstore.Store, rec *recommend.Recommender, metrics *observe.Metrics, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		catalog:   catalog,
		store:     store,
		recommend: rec,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/menu", s.handleMenu)
	mux.HandleFunc("GET /api/order/{kiosk}", s.handleGetOrder)
	mux.HandleFunc("PATCH /api/order/{kiosk}/lines/{id}", s.handlePatchLine)
	mux.HandleFunc("DELETE /api/order/{kiosk}/lines/{id}", s.handleDeleteLine)
	mux.HandleFunc("POST /api/order/{kiosk}/confirm", s.handleConfirm)
	mux.HandleFunc("POST /api/order/{kiosk}/reset", s.handleReset)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /ws/session/{kiosk}", s.handleSession)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutCtx); err != nil {
		return err
	}
	return <-errCh
}

// langParam reads the lang query parameter, defaulting to Korean, and
// enforces the configured language allow-list.
func (s *Server) langParam(r *http.Request) (menu.Lang, bool) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		return menu.Korean, s.languages == nil || s.languages[menu.Korean]
	}
	lang := menu.Lang(raw)
	if !lang.IsValid() {
		return lang, false
	}
	if s.languages != nil && !s.languages[lang] {
		return lang, false
	}
	return lang, true
}

// handleMenu serves the current catalog.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.catalog().Entries(),
	})
}

// handleGetOrder returns the running order of a kiosk session.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(r.PathValue("kiosk"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type patchLineRequest struct {
	Quantity int `json:"quantity"`
}

// handlePatchLine sets the quantity of one order line. A quantity of zero
// removes the line.
func (s *Server) handlePatchLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(r.PathValue("kiosk"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}

	var req patchLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, sess.SetQuantity(r.PathValue("id"), req.Quantity))
}

// handleDeleteLine removes one order line.
func (s *Server) handleDeleteLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(r.PathValue("kiosk"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sess.Remove(r.PathValue("id")))
}

// handleConfirm submits the running order to the archive.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(r.PathValue("kiosk"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}

	rec, err := sess.Confirm(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrEmptyOrder) {
			writeError(w, http.StatusConflict, "order is empty")
			return
		}
		slog.Error("order confirmation failed", "kiosk", r.PathValue("kiosk"), "err", err)
		writeError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleReset clears the running order.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(r.PathValue("kiosk"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sess.Reset())
}

type recommendationsResponse struct {
	Popular  []recommend.Item    `json:"popular"`
	Sets     []recommend.SetMenu `json:"sets"`
	Frequent []recommend.Item    `json:"frequent,omitempty"`
}

// handleRecommendations serves the suggestion rail. With a kiosk query
// parameter the response also carries that kiosk's frequently ordered items.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.langParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported language")
		return
	}
	cat := s.catalog()

	popular, err := s.recommend.Popular(r.Context(), cat, lang, 5)
	if err != nil {
		slog.Error("recommendation ranking failed", "err", err)
		writeError(w, http.StatusInternalServerError, "recommendations unavailable")
		return
	}

	resp := recommendationsResponse{
		Popular: popular,
		Sets:    s.recommend.Sets(cat, lang),
	}

	if kiosk := r.URL.Query().Get("kiosk"); kiosk != "" {
		frequent, err := s.recommend.Frequent(r.Context(), kiosk, cat, lang, 3)
		if err != nil {
			slog.Error("frequent-items ranking failed", "kiosk", kiosk, "err", err)
		} else {
			resp.Frequent = frequent
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
