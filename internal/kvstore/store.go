package kvstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
)

// Backend is the durable side of a Store.
type Backend interface {
	// LoadAll returns every stored key/value pair.
	LoadAll(ctx context.Context) (map[string]string, error)

	// Write stores all entries atomically, replacing existing values.
	Write(ctx context.Context, entries map[string]string) error
}

// Store is a write-back cache over a Backend.
//
// All public methods are thread-safe.
type Store struct {
	backend Backend

	mu    sync.RWMutex
	cache map[string]string
	dirty map[string]struct{}
}

// Open creates a Store and loads the backend contents into the cache.
//
// Parameters:
//   - ctx: Bounds the initial load
//   - backend: Durable storage
//
// Returns:
//   - *Store: Ready-to-use store
//   - error: If the initial load fails
func Open(ctx context.Context, backend Backend) (*Store, error) {
	entries, err := backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Store{
		backend: backend,
		cache:   entries,
		dirty:   make(map[string]struct{}),
	}, nil
}

// Exists reports whether key has a value, staged or durable.
func (s *Store) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[key]
	return ok
}

// Get returns the raw text stored under key.
func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

// GetInteger returns the value under key parsed as a decimal integer.
func (s *Store) GetInteger(key string) (int, error) {
	raw, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrNotInteger, key, raw)
	}
	return n, nil
}

// Put stages value under key. It becomes durable on the next Flush.
// Empty keys are ignored.
func (s *Store) Put(key, value string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = value
	s.dirty[key] = struct{}{}
}

// UpdateNumber sets key to n and writes it through to the backend.
//
// The cached value is updated even when the write fails; the entry is
// then left dirty for the next Flush.
//
// Returns:
//   - error: ErrEmptyKey, or the backend failure
func (s *Store) UpdateNumber(ctx context.Context, key string, n int) error {
	if key == "" {
		return ErrEmptyKey
	}
	value := strconv.Itoa(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = value
	if err := s.backend.Write(ctx, map[string]string{key: value}); err != nil {
		s.dirty[key] = struct{}{}
		return fmt.Errorf("writing %s: %w", key, err)
	}
	delete(s.dirty, key)
	return nil
}

// Flush writes every dirty entry to the backend in one batch. Nothing is
// written when there are no dirty entries.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.dirty) == 0 {
		return nil
	}
	batch := make(map[string]string, len(s.dirty))
	for key := range s.dirty {
		batch[key] = s.cache[key]
	}
	if err := s.backend.Write(ctx, batch); err != nil {
		return fmt.Errorf("flushing %d entries: %w", len(batch), err)
	}
	clear(s.dirty)
	return nil
}

// Pending returns the keys staged but not yet durable, sorted.
func (s *Store) Pending() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.dirty))
}
