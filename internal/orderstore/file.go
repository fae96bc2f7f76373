package orderstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// FileStore persists orders as JSON lines in a local file. It serves
// single-kiosk deployments that run without a database; a busy food court
// should use [PGStore] instead.
//
// Thread-safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that writes to the given path.
// The file is created on first write if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Create implements [Store]. It appends the record as one JSON line.
func (fs *FileStore) Create(_ context.Context, rec *Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("orderstore: marshal: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("orderstore: open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("orderstore: write: %w", err)
	}
	return nil
}

// Recent implements [Store].
func (fs *FileStore) Recent(_ context.Context, window time.Duration, limit int) ([]Record, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.readAll()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-window)
	recent := make([]Record, 0, len(records))
	for _, r := range records {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, r)
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

// UpdateStatus implements [Store]. It rewrites the whole file; the store
// only holds a day or two of orders for one kiosk, so this stays cheap.
func (fs *FileStore) UpdateStatus(_ context.Context, id string, status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("orderstore: invalid status %q", status)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.readAll()
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].ID == id {
			records[i].Status = status
			records[i].UpdatedAt = time.Now().UTC()
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("orderstore: order %q not found", id)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("orderstore: marshal: %w", err)
		}
	}

	// Write to a temp file and rename so a crash mid-write never loses
	// the archive.
	tmp := filepath.Join(filepath.Dir(fs.path), "."+filepath.Base(fs.path)+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("orderstore: write temp: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("orderstore: replace file: %w", err)
	}
	return nil
}

// readAll loads every record in the file. A missing file is an empty store.
// Callers must hold fs.mu.
func (fs *FileStore) readAll() ([]Record, error) {
	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("orderstore: open file: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("orderstore: decode line: %w", err)
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("orderstore: read: %w", err)
	}
	return records, nil
}
