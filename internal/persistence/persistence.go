package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"product-sync/internal/mapping"
)

var (
	// ErrNotFound is returned when a configuration does not exist.
	ErrNotFound = errors.New("configuration not found")
	// ErrTxClosed is returned when a committed or rolled back transaction
	// is used again.
	ErrTxClosed = errors.New("transaction already closed")
	// ErrOrphanRecord is returned on commit when a record belongs to no
	// configuration.
	ErrOrphanRecord = errors.New("record belongs to no configuration")
	// ErrUnsupported is returned for things a backend cannot store.
	ErrUnsupported = errors.New("unsupported persistable")
)

// Backend is the store of mapping configurations.
type Backend interface {
	// Fetch returns a private copy of the configuration with the given id.
	Fetch(ctx context.Context, id uuid.UUID) (*mapping.Configuration, error)
	// FindByName returns a private copy of the configuration with the
	// given name.
	FindByName(ctx context.Context, name string) (*mapping.Configuration, error)
	// Begin starts a transaction.
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction buffers changes until Commit.
type Transaction interface {
	CreateOrUpdate(ctx context.Context, thing mapping.Persistable) error
	Delete(ctx context.Context, id uuid.UUID) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Op is one buffered change. Thing is nil for deletions.
type Op struct {
	Thing mapping.Persistable
	ID    uuid.UUID
}

// Buffer collects the operations of a transaction for backends that apply
// them in one step.
type Buffer struct {
	ops    []Op
	closed bool
}

// Add buffers a create or update.
func (b *Buffer) Add(thing mapping.Persistable) error {
	if b.closed {
		return ErrTxClosed
	}

	switch thing.(type) {
	case *mapping.Configuration, *mapping.Record:
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, thing)
	}

	b.ops = append(b.ops, Op{Thing: thing, ID: thing.PersistentID()})

	return nil
}

// Remove buffers a deletion.
func (b *Buffer) Remove(id uuid.UUID) error {
	if b.closed {
		return ErrTxClosed
	}

	b.ops = append(b.ops, Op{ID: id})

	return nil
}

// Close closes the buffer and returns the operations collected so far.
func (b *Buffer) Close() ([]Op, error) {
	if b.closed {
		return nil, ErrTxClosed
	}

	b.closed = true

	return b.ops, nil
}

// Apply returns a new state with ops applied to state. Configurations are
// written first, then records, then deletions. Configurations that change
// are copied, so state itself is never modified and can be kept when Apply
// fails.
func Apply(state map[uuid.UUID]*mapping.Configuration, ops []Op) (map[uuid.UUID]*mapping.Configuration, error) {
	next := make(map[uuid.UUID]*mapping.Configuration, len(state))
	for id, c := range state {
		next[id] = c
	}

	owned := make(map[uuid.UUID]bool)

	own := func(c *mapping.Configuration) (*mapping.Configuration, error) {
		if owned[c.ID] {
			return c, nil
		}

		clone, err := c.Clone()
		if err != nil {
			return nil, err
		}

		next[clone.ID] = clone
		owned[clone.ID] = true

		return clone, nil
	}

	for _, op := range ops {
		cfg, ok := op.Thing.(*mapping.Configuration)
		if !ok {
			continue
		}

		clone, err := cfg.Clone()
		if err != nil {
			return nil, err
		}

		next[clone.ID] = clone
		owned[clone.ID] = true
	}

	for _, op := range ops {
		r, ok := op.Thing.(*mapping.Record)
		if !ok {
			continue
		}

		owner := ownerOf(next, r.ID)
		if owner == nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, ErrOrphanRecord)
		}

		owner, err := own(owner)
		if err != nil {
			return nil, err
		}

		owner.Put(&mapping.Record{ID: r.ID, InternalThing: r.InternalThing, ExternalID: r.ExternalID})
	}

	for _, op := range ops {
		if op.Thing != nil {
			continue
		}

		if _, ok := next[op.ID]; ok {
			delete(next, op.ID)
			continue
		}

		// Deleting a record no configuration holds any more is a no-op.
		if owner := ownerOf(next, op.ID); owner != nil {
			owner, err := own(owner)
			if err != nil {
				return nil, err
			}

			owner.RemoveRecord(op.ID)
		}
	}

	return next, nil
}

func ownerOf(state map[uuid.UUID]*mapping.Configuration, recordID uuid.UUID) *mapping.Configuration {
	for _, c := range state {
		if _, ok := c.Record(recordID); ok {
			return c
		}
	}

	return nil
}
