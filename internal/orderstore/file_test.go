package orderstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/order"
	"github.com/hanwoori/sorikiosk/internal/orderstore"
)

func newFileStore(t *testing.T) *orderstore.FileStore {
	t.Helper()
	return orderstore.NewFileStore(filepath.Join(t.TempDir(), "orders.jsonl"))
}

func sampleRecord(t *testing.T, kioskID string) *orderstore.Record {
	t.Helper()
	cat := menu.Builtin()
	lines := []order.Line{
		{Entry: cat.ByID("bibimbap"), Quantity: 1},
		{Entry: cat.ByID("cola"), Quantity: 2},
	}
	return orderstore.NewRecord(kioskID, menu.Korean, lines)
}

func TestNewRecord_PricesLines(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t, "kiosk-1")

	if rec.ID == "" {
		t.Error("record ID should be assigned")
	}
	if rec.Status != orderstore.StatusPending {
		t.Errorf("status = %q, want pending", rec.Status)
	}
	if len(rec.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(rec.Lines))
	}
	if rec.Lines[0].Name != "비빔밥" {
		t.Errorf("line name = %q, want localized Korean name", rec.Lines[0].Name)
	}
	wantTotal := 12000 + 2*2500
	if rec.TotalPrice != wantTotal {
		t.Errorf("total = %d, want %d", rec.TotalPrice, wantTotal)
	}
}

func TestNewRecord_SkipsUnresolvedAndEmptyLines(t *testing.T) {
	t.Parallel()

	cat := menu.Builtin()
	lines := []order.Line{
		{Entry: nil, Quantity: 1},
		{Entry: cat.ByID("rice"), Quantity: 0},
		{Entry: cat.ByID("rice"), Quantity: 3},
	}
	rec := orderstore.NewRecord("kiosk-1", menu.English, lines)

	if len(rec.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(rec.Lines))
	}
	if rec.TotalPrice != 3*2000 {
		t.Errorf("total = %d, want %d", rec.TotalPrice, 3*2000)
	}
}

func TestFileStore_CreateAndRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFileStore(t)

	first := sampleRecord(t, "kiosk-1")
	second := sampleRecord(t, "kiosk-2")
	if err := fs.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Error("Create should assign CreatedAt")
	}

	got, err := fs.Recent(ctx, time.Hour, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != second.ID {
		t.Errorf("first record = %q, want newest %q", got[0].ID, second.ID)
	}
	if got[0].Lines[1].Quantity != 2 {
		t.Errorf("line round-trip lost quantity: %+v", got[0].Lines)
	}
}

func TestFileStore_RecentHonorsLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFileStore(t)

	for range 5 {
		if err := fs.Create(ctx, sampleRecord(t, "kiosk-1")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := fs.Recent(ctx, time.Hour, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d records, want 3", len(got))
	}
}

func TestFileStore_RecentEmptyStore(t *testing.T) {
	t.Parallel()

	fs := newFileStore(t)
	got, err := fs.Recent(context.Background(), time.Hour, 10)
	if err != nil {
		t.Fatalf("Recent on missing file: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestFileStore_UpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFileStore(t)

	rec := sampleRecord(t, "kiosk-1")
	if err := fs.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := fs.UpdateStatus(ctx, rec.ID, orderstore.StatusPreparing); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := fs.Recent(ctx, time.Hour, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got[0].Status != orderstore.StatusPreparing {
		t.Errorf("status = %q, want preparing", got[0].Status)
	}
}

func TestFileStore_UpdateStatusUnknownOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFileStore(t)

	if err := fs.Create(ctx, sampleRecord(t, "kiosk-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.UpdateStatus(ctx, "no-such-order", orderstore.StatusCompleted); err == nil {
		t.Fatal("UpdateStatus on unknown ID should fail")
	}
}

func TestFileStore_UpdateStatusRejectsInvalid(t *testing.T) {
	t.Parallel()

	fs := newFileStore(t)
	if err := fs.UpdateStatus(context.Background(), "any", orderstore.Status("burned")); err == nil {
		t.Fatal("invalid status should be rejected")
	}
}
