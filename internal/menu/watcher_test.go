package menu_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hanwoori/sorikiosk/internal/menu"
)

const watcherCatalogYAML = `
entries:
  - id: bibimbap
    name:
      ko: 비빔밥
    price: 12000
    available: true
    keywords:
      ko: [비빔밥]
      en: [bibimbap]
      zh: [拌饭]
      ja: [ビビンバ]
`

const watcherUpdatedCatalogYAML = `
entries:
  - id: bibimbap
    name:
      ko: 비빔밥
    price: 13000
    available: true
    keywords:
      ko: [비빔밥]
      en: [bibimbap]
      zh: [拌饭]
      ja: [ビビンバ]
  - id: cola
    name:
      ko: 콜라
    price: 2500
    available: true
    keywords:
      ko: [콜라]
      en: [cola]
      zh: [可乐]
      ja: [コーラ]
`

const watcherInvalidCatalogYAML = `
entries:
  - id: bibimbap
    price: -5
`

func writeCatalogFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %q: %v", path, err)
	}
}

func TestWatcher_InitialLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "menu.yaml")
	writeCatalogFile(t, catPath, watcherCatalogYAML)

	w, err := menu.NewWatcher(catPath, nil, menu.WithInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	cat := w.Current()
	if cat == nil {
		t.Fatal("Current() returned nil after initial load")
	}
	if cat.Len() != 1 {
		t.Errorf("catalog size: got %d, want 1", cat.Len())
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "menu.yaml")
	writeCatalogFile(t, catPath, watcherCatalogYAML)

	var mu sync.Mutex
	var callbackOld, callbackNew *menu.Catalog
	called := make(chan struct{}, 1)

	w, err := menu.NewWatcher(catPath, func(old, new *menu.Catalog) {
		mu.Lock()
		callbackOld = old
		callbackNew = new
		mu.Unlock()
		select {
		case called <- struct{}{}:
		default:
		}
	}, menu.WithInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	// Give the initial poll a moment, then update the file.
	time.Sleep(100 * time.Millisecond)
	writeCatalogFile(t, catPath, watcherUpdatedCatalogYAML)

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not invoked within timeout")
	}

	mu.Lock()
	defer mu.Unlock()

	if callbackOld == nil || callbackNew == nil {
		t.Fatal("callback received nil catalogs")
	}
	if callbackOld.Len() != 1 {
		t.Errorf("old catalog size: got %d, want 1", callbackOld.Len())
	}
	if callbackNew.Len() != 2 {
		t.Errorf("new catalog size: got %d, want 2", callbackNew.Len())
	}

	cur := w.Current()
	if e := cur.ByID("bibimbap"); e == nil || e.Price != 13000 {
		t.Errorf("Current() should have the reloaded price, got %+v", e)
	}
}

func TestWatcher_InvalidFileKeepsOldCatalog(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "menu.yaml")
	writeCatalogFile(t, catPath, watcherCatalogYAML)

	callCount := 0
	var mu sync.Mutex

	w, err := menu.NewWatcher(catPath, func(old, new *menu.Catalog) {
		mu.Lock()
		callCount++
		mu.Unlock()
	}, menu.WithInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	writeCatalogFile(t, catPath, watcherInvalidCatalogYAML)

	// Wait enough polls for it to notice the change.
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	calls := callCount
	mu.Unlock()

	if calls != 0 {
		t.Errorf("callback should not be called for invalid catalog, got %d calls", calls)
	}

	cur := w.Current()
	if cur.Len() != 1 {
		t.Errorf("Current() should still be the old catalog, got %d entries", cur.Len())
	}
}

func TestWatcher_InitialLoadFails(t *testing.T) {
	t.Parallel()
	_, err := menu.NewWatcher("/nonexistent/menu.yaml", nil)
	if err == nil {
		t.Fatal("expected error for non-existent file, got nil")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "menu.yaml")
	writeCatalogFile(t, catPath, watcherCatalogYAML)

	w, err := menu.NewWatcher(catPath, nil, menu.WithInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Multiple stops should not panic.
	w.Stop()
	w.Stop()
	w.Stop()
}
