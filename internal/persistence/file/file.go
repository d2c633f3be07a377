// Package file provides a persistence.Backend that keeps every
// configuration in one YAML mapping file.
//
// The file is read on every fetch and rewritten on every commit through a
// temporary file and a rename, so readers never observe a partial write.
// A missing file is an empty store.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"product-sync/internal/mapping"
	"product-sync/internal/persistence"
)

// Store is a YAML file backed configuration store.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store over the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store writes to.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*mapping.File, error) {
	f, err := mapping.LoadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &mapping.File{Version: mapping.CurrentVersion}, nil
	}

	return f, err
}

// Fetch implements persistence.Backend.
func (s *Store) Fetch(ctx context.Context, id uuid.UUID) (*mapping.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	c, ok := f.ConfigurationByID(id)
	if !ok {
		return nil, fmt.Errorf("configuration %s: %w", id, persistence.ErrNotFound)
	}

	return c, nil
}

// FindByName implements persistence.Backend.
func (s *Store) FindByName(ctx context.Context, name string) (*mapping.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	c, ok := f.Configuration(name)
	if !ok {
		return nil, fmt.Errorf("configuration %q: %w", name, persistence.ErrNotFound)
	}

	return c, nil
}

// Load returns the whole file, for validation.
func (s *Store) Load(ctx context.Context) (*mapping.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Begin implements persistence.Backend.
func (s *Store) Begin(ctx context.Context) (persistence.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &tx{store: s}, nil
}

func (s *Store) commit(ops []persistence.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	state := make(map[uuid.UUID]*mapping.Configuration, len(f.Configurations))
	for _, c := range f.Configurations {
		state[c.ID] = c
	}

	next, err := persistence.Apply(state, ops)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	f.Configurations = f.Configurations[:0]
	for _, c := range next {
		f.Configurations = append(f.Configurations, c)
	}

	slices.SortFunc(f.Configurations, func(a, b *mapping.Configuration) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := mapping.WriteFile(f, tmp); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace mapping file %s: %w", s.path, err)
	}

	return nil
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

	return t.store.commit(ops)
}

func (t *tx) Rollback(_ context.Context) error {
	_, err := t.buf.Close()
	return err
}
