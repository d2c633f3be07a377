// Package memory provides an in-memory persistence.Backend.
//
// Configurations are deep-copied on every read and write, so callers never
// share state with the store. Transactions buffer their changes and apply
// them under a single write lock on Commit.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"product-sync/internal/mapping"
	"product-sync/internal/persistence"
)

// Store is a thread-safe in-memory configuration store.
type Store struct {
	mu      sync.RWMutex
	configs map[uuid.UUID]*mapping.Configuration
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{configs: make(map[uuid.UUID]*mapping.Configuration)}
}

// Fetch implements persistence.Backend.
func (s *Store) Fetch(ctx context.Context, id uuid.UUID) (*mapping.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.configs[id]
	if !ok {
		return nil, fmt.Errorf("configuration %s: %w", id, persistence.ErrNotFound)
	}

	return c.Clone()
}

// FindByName implements persistence.Backend.
func (s *Store) FindByName(ctx context.Context, name string) (*mapping.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.configs {
		if c.Name == name {
			return c.Clone()
		}
	}

	return nil, fmt.Errorf("configuration %q: %w", name, persistence.ErrNotFound)
}

// Begin implements persistence.Backend.
func (s *Store) Begin(ctx context.Context) (persistence.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &tx{store: s}, nil
}

// Len returns the number of stored configurations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.configs)
}

type tx struct {
	store *Store
	buf   persistence.Buffer
}

func (t *tx) CreateOrUpdate(_ context.Context, thing mapping.Persistable) error {
	return t.buf.Add(thing)
}

func (t *tx) Delete(_ context.Context, id uuid.UUID) error {
	return t.buf.Remove(id)
}

func (t *tx) Commit(ctx context.Context) error {
	ops, err := t.buf.Close()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	next, err := persistence.Apply(t.store.configs, ops)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	t.store.configs = next

	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	_, err := t.buf.Close()
	return err
}
