// Package repository persists each document collection as a single JSON array
// file: loaded once per process, cached in memory, and rewritten in full on
// every mutation. The files stay human-readable on purpose.
//
// Two processes (or two interleaved requests racing through different stores
// pointed at the same file) update as last-write-wins. That is an accepted
// limitation of the single-user deployment model, not a guarantee; the mutex
// below only serializes mutations within this process.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is the minimal shape a stored document must have: a stable opaque id
// and a re-stampable updatedAt.
type Record[T any] interface {
	RecordID() string
	Stamped(t time.Time) T
}

// PersistenceError marks a durable-storage fault. It is not user-correctable
// and callers surface it as an internal error.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage fault on %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is a durable CRUD collection for one document type.
type Store[T Record[T]] struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	items  []T
}

func NewStore[T Record[T]](path string, logger *zap.Logger) *Store[T] {
	return &Store[T]{path: path, logger: logger}
}

// List returns every record in insertion order.
func (s *Store[T]) List() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out, nil
}

// GetByID does a linear lookup; the collections are small enough that an
// index would buy nothing.
func (s *Store[T]) GetByID(id string) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return zero, false, err
	}
	for _, item := range s.items {
		if item.RecordID() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Create appends the record and persists the whole collection before
// returning. The caller supplies the id; uniqueness comes from the id
// generator, not from a collision check here.
func (s *Store[T]) Create(item T) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return zero, err
	}
	s.items = append(s.items, item)
	if err := s.persist(); err != nil {
		// roll the cache back so a failed write does not leave a phantom record
		s.items = s.items[:len(s.items)-1]
		return zero, err
	}
	return item, nil
}

// Update applies the caller's merge to a copy of the stored record, refreshes
// updatedAt, persists, and returns the merged record. A missing id is a
// (zero, false, nil) result, not an error.
func (s *Store[T]) Update(id string, apply func(*T)) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return zero, false, err
	}
	for i, item := range s.items {
		if item.RecordID() != id {
			continue
		}
		merged := item
		apply(&merged)
		merged = merged.Stamped(time.Now().UTC())
		s.items[i] = merged
		if err := s.persist(); err != nil {
			s.items[i] = item
			return zero, false, err
		}
		return merged, true, nil
	}
	return zero, false, nil
}

// Delete removes the record if present and reports whether a removal
// happened. Deleting an absent id is safe.
func (s *Store[T]) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	for i, item := range s.items {
		if item.RecordID() != id {
			continue
		}
		removed := item
		s.items = append(s.items[:i], s.items[i+1:]...)
		if err := s.persist(); err != nil {
			s.items = append(s.items[:i], append([]T{removed}, s.items[i:]...)...)
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// ensureLoaded reads the backing file on first access. A missing file is the
// bootstrap case: start empty and write the empty collection out immediately.
func (s *Store[T]) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.items = []T{}
		s.loaded = true
		if s.logger != nil {
			s.logger.Info("Initializing empty collection", zap.String("path", s.path))
		}
		if perr := s.persist(); perr != nil {
			s.loaded = false
			return perr
		}
		return nil
	}
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	s.items = items
	s.loaded = true
	return nil
}

func (s *Store[T]) persist() error {
	raw, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}
