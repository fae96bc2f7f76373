package server_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

type wsFrame struct {
	Type  string `json:"type"`
	Order *struct {
		Lines []struct {
			Entry struct {
				ID string `json:"id"`
			} `json:"entry"`
			Quantity int `json:"quantity"`
		} `json:"lines"`
		Total int `json:"total"`
	} `json:"order"`
	Result *struct {
		Degraded   bool    `json:"degraded"`
		Confidence float64 `json:"confidence"`
	} `json:"result"`
	Error string `json:"error"`
}

func dialSession(t *testing.T, env *testEnv, path string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(env.server.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var f wsFrame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode frame %q: %v", data, err)
	}
	return f
}

func TestSessionSocket_OrderFlow(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	conn := dialSession(t, env, "/ws/session/kiosk-9?lang=en")

	sendFrame(t, conn, map[string]string{"type": "final", "transcript": "two bulgogi please"})
	f := readFrame(t, conn)
	if f.Type != "order" {
		t.Fatalf("frame type = %q, want order (error=%q)", f.Type, f.Error)
	}
	if f.Order == nil || len(f.Order.Lines) != 1 {
		t.Fatalf("order frame = %+v, want one line", f)
	}
	if f.Order.Lines[0].Entry.ID != "bulgogi" || f.Order.Lines[0].Quantity != 2 {
		t.Errorf("line = %+v, want bulgogi x2", f.Order.Lines[0])
	}

	sendFrame(t, conn, map[string]any{"type": "set_quantity", "entry_id": "bulgogi", "quantity": 1})
	f = readFrame(t, conn)
	if f.Order == nil || f.Order.Total != 15000 {
		t.Errorf("after set_quantity, frame = %+v, want total 15000", f)
	}

	sendFrame(t, conn, map[string]string{"type": "confirm"})
	f = readFrame(t, conn)
	if f.Type != "confirmed" {
		t.Fatalf("frame type = %q, want confirmed (error=%q)", f.Type, f.Error)
	}
	if len(env.store.created) != 1 {
		t.Errorf("store received %d records, want 1", len(env.store.created))
	}
}

func TestSessionSocket_DegradedResultNotMerged(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	conn := dialSession(t, env, "/ws/session/kiosk-9?lang=en")

	sendFrame(t, conn, map[string]string{"type": "final", "transcript": "tteokbokki please"})
	f := readFrame(t, conn)
	if f.Type != "order" {
		t.Fatalf("frame type = %q, want order", f.Type)
	}
	if f.Result == nil || !f.Result.Degraded {
		t.Error("off-menu transcript should produce a degraded result")
	}
	if len(f.Order.Lines) != 0 {
		t.Errorf("degraded result must not enter the order, got %+v", f.Order.Lines)
	}
}

func TestSessionSocket_UnknownEventType(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	conn := dialSession(t, env, "/ws/session/kiosk-9?lang=ko")

	sendFrame(t, conn, map[string]string{"type": "dance"})
	f := readFrame(t, conn)
	if f.Type != "error" {
		t.Errorf("frame type = %q, want error", f.Type)
	}
}

func TestSessionSocket_BadLanguageRejected(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	srv := httptest.NewServer(env.server.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session/kiosk-9?lang=fr"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, _, err := websocket.Dial(ctx, url, nil); err == nil {
		t.Fatal("dial with an unsupported language should fail the upgrade")
	}
}
