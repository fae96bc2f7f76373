package menu

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher monitors a catalog file for changes and swaps in the new catalog
// when the file is modified. It uses polling (not fsnotify) to keep
// dependencies minimal; kiosks reload their menu a few times a minute at most.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(old, new *Catalog)

	mu       sync.Mutex
	current  *Catalog
	done     chan struct{}
	stopOnce sync.Once

	// last known file state for change detection
	lastMtime time.Time
	lastHash  [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 10 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher creates a catalog file watcher. It loads the initial catalog
// immediately and starts polling in a background goroutine. The onChange
// callback, if non-nil, is invoked after each successful reload.
func NewWatcher(path string, onChange func(old, new *Catalog), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: 10 * time.Second,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	cat, hash, mtime, err := w.loadAndHash()
	if err != nil {
		return nil, fmt.Errorf("menu: watcher initial load: %w", err)
	}
	w.current = cat
	w.lastHash = hash
	w.lastMtime = mtime

	go w.poll()
	return w, nil
}

// Current returns the most recently loaded valid catalog.
func (w *Watcher) Current() *Catalog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reads the catalog file and, if it has changed and is valid, swaps
// it in and calls onChange. An invalid file keeps the previous catalog so a
// half-written edit never takes the menu offline.
func (w *Watcher) check() {
	// Quick mtime check first to avoid hashing unchanged files.
	info, err := os.Stat(w.path)
	if err != nil {
		slog.Warn("catalog watcher: cannot stat file", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	mtime := w.lastMtime
	w.mu.Unlock()

	if info.ModTime().Equal(mtime) {
		return
	}

	cat, hash, newMtime, err := w.loadAndHash()
	if err != nil {
		slog.Warn("catalog watcher: failed to load catalog", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()

	if hash == w.lastHash {
		// File was touched but content is identical.
		w.lastMtime = newMtime
		w.mu.Unlock()
		return
	}

	old := w.current
	w.current = cat
	w.lastHash = hash
	w.lastMtime = newMtime
	w.mu.Unlock()

	slog.Info("catalog watcher: menu reloaded", "path", w.path, "entries", cat.Len())

	// Invoke the callback outside the lock so it can safely call Current().
	if w.onChange != nil {
		w.onChange(old, cat)
	}
}

// loadAndHash reads the catalog file, parses and validates it, and returns
// the catalog alongside the file's SHA-256 hash and modification time.
func (w *Watcher) loadAndHash() (*Catalog, [sha256.Size]byte, time.Time, error) {
	var zeroHash [sha256.Size]byte

	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}

	info, err := os.Stat(w.path)
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}

	cat, err := LoadCatalogFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, zeroHash, time.Time{}, err
	}

	return cat, sha256.Sum256(data), info.ModTime(), nil
}
