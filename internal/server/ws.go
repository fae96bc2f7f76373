package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/hanwoori/sorikiosk/internal/order"
	"github.com/hanwoori/sorikiosk/internal/session"
)

// wsWriteTimeout bounds a single outbound frame write.
const wsWriteTimeout = 5 * time.Second

// Client frame types.
const (
	eventFinal       = "final"
	eventSetQuantity = "set_quantity"
	eventRemove      = "remove"
	eventReset       = "reset"
	eventConfirm     = "confirm"
)

// clientEvent is one inbound JSON frame from the kiosk front-end.
type clientEvent struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	EntryID    string `json:"entry_id,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
}

// serverEvent is one outbound JSON frame.
type serverEvent struct {
	Type   string            `json:"type"`
	Order  *session.Snapshot `json:"order,omitempty"`
	Result *order.Result     `json:"result,omitempty"`
	Record any               `json:"record,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// handleSession upgrades to a WebSocket and runs the kiosk event loop. One
// connection owns one kiosk session; the session ends when the socket
// closes.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	kiosk := r.PathValue("kiosk")
	lang, ok := s.langParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "kiosk", kiosk, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sess := s.sessions.Get(ctx, kiosk, lang)
	defer s.sessions.End(context.WithoutCancel(ctx), kiosk)

	slog.Info("kiosk connected", "kiosk", kiosk, "lang", lang)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				slog.Info("kiosk disconnected", "kiosk", kiosk)
			} else {
				slog.Warn("websocket read failed", "kiosk", kiosk, "err", err)
			}
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.send(ctx, conn, kiosk, serverEvent{Type: "error", Error: "invalid frame"})
			continue
		}

		resp := s.dispatch(ctx, sess, ev)
		if !s.send(ctx, conn, kiosk, resp) {
			return
		}
	}
}

// dispatch applies one kiosk event to the session and builds the reply.
func (s *Server) dispatch(ctx context.Context, sess *session.Session, ev clientEvent) serverEvent {
	switch ev.Type {
	case eventFinal:
		res, snap, err := sess.HandleFinal(ctx, ev.Transcript)
		if err != nil {
			return serverEvent{Type: "error", Error: err.Error()}
		}
		return serverEvent{Type: "order", Order: &snap, Result: res}

	case eventSetQuantity:
		snap := sess.SetQuantity(ev.EntryID, ev.Quantity)
		return serverEvent{Type: "order", Order: &snap}

	case eventRemove:
		snap := sess.Remove(ev.EntryID)
		return serverEvent{Type: "order", Order: &snap}

	case eventReset:
		snap := sess.Reset()
		return serverEvent{Type: "order", Order: &snap}

	case eventConfirm:
		rec, err := sess.Confirm(ctx)
		if err != nil {
			if errors.Is(err, session.ErrEmptyOrder) {
				return serverEvent{Type: "error", Error: "order is empty"}
			}
			slog.Error("order confirmation failed", "err", err)
			return serverEvent{Type: "error", Error: "failed to submit order"}
		}
		snap := sess.Snapshot()
		return serverEvent{Type: "confirmed", Order: &snap, Record: rec}

	default:
		return serverEvent{Type: "error", Error: "unknown event type"}
	}
}

// send writes one frame; returns false when the connection is gone.
func (s *Server) send(ctx context.Context, conn *websocket.Conn, kiosk string, ev serverEvent) bool {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("frame encoding failed", "kiosk", kiosk, "err", err)
		return true
	}

	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, data); err != nil {
		slog.Warn("websocket write failed", "kiosk", kiosk, "err", err)
		return false
	}
	return true
}
