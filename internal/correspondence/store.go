package correspondence

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-sync/internal/common"
	"product-sync/internal/mapping"
)

// Correspondence links an internal target thing to an external identifier.
type Correspondence struct {
	RecordID   uuid.UUID
	InternalID uuid.UUID
	External   External
}

// Fetcher loads the authoritative copy of a configuration.
type Fetcher interface {
	Fetch(ctx context.Context, id uuid.UUID) (*mapping.Configuration, error)
}

// Writer is the part of a backing store transaction the store writes to.
type Writer interface {
	CreateOrUpdate(ctx context.Context, thing mapping.Persistable) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type key struct {
	internal  uuid.UUID
	token     string
	direction Direction
}

type tokenKey struct {
	token     string
	direction Direction
}

// Store is the in-memory index over the correspondences of one mapping
// configuration.
type Store struct {
	config *mapping.Configuration
	source Fetcher
	logger *zap.Logger

	entries  []*Correspondence
	index    map[key]*Correspondence
	byToken  map[tokenKey][]*Correspondence
	byRecord map[uuid.UUID]*Correspondence
	removed  []uuid.UUID
}

// NewStore indexes the records of config. source is used by Refresh and
// may be nil when the store is never refreshed.
func NewStore(logger *zap.Logger, config *mapping.Configuration, source Fetcher) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{source: source, logger: logger.Named("correspondence")}
	s.reset(config)

	return s
}

// reset replaces the working configuration and rebuilds every index.
func (s *Store) reset(config *mapping.Configuration) {
	s.config = config
	s.entries = make([]*Correspondence, 0, len(config.Correspondences))
	s.index = make(map[key]*Correspondence, len(config.Correspondences))
	s.byToken = make(map[tokenKey][]*Correspondence)
	s.byRecord = make(map[uuid.UUID]*Correspondence, len(config.Correspondences))
	s.removed = nil

	for _, r := range config.Correspondences {
		c := &Correspondence{RecordID: r.ID, InternalID: r.InternalThing, External: Decode(r.ExternalID)}
		if !c.External.Valid() {
			s.logger.Warn("degraded correspondence record",
				zap.Stringer("record", r.ID),
				zap.String("external_id", r.ExternalID))
		}

		s.add(c)
	}
}

func (s *Store) add(c *Correspondence) {
	s.entries = append(s.entries, c)
	s.byRecord[c.RecordID] = c
	s.indexEntry(c)
}

func (s *Store) indexEntry(c *Correspondence) {
	if !c.External.Valid() {
		return
	}

	token := c.External.Token()
	k := key{internal: c.InternalID, token: token, direction: c.External.Direction}

	if _, exists := s.index[k]; !exists {
		s.index[k] = c
	}

	tk := tokenKey{token: token, direction: c.External.Direction}
	s.byToken[tk] = append(s.byToken[tk], c)
}

func (s *Store) unindexEntry(c *Correspondence) {
	if !c.External.Valid() {
		return
	}

	token := c.External.Token()
	k := key{internal: c.InternalID, token: token, direction: c.External.Direction}

	if s.index[k] == c {
		delete(s.index, k)
	}

	tk := tokenKey{token: token, direction: c.External.Direction}
	s.byToken[tk] = slices.DeleteFunc(s.byToken[tk], func(e *Correspondence) bool { return e == c })
}

// Configuration returns the working copy of the configuration.
func (s *Store) Configuration() *mapping.Configuration {
	return s.config
}

// Len returns the number of records of the configuration, degraded ones
// included.
func (s *Store) Len() int {
	return len(s.config.Correspondences)
}

// Upsert records that internalID corresponds to identifier in the given
// direction. An existing correspondence is found first through the index,
// then among the persisted records of internalID, and updated in place;
// otherwise a new record is appended. created reports whether a record was
// added.
func (s *Store) Upsert(internalID uuid.UUID, identifier any, direction Direction) (c *Correspondence, created bool, err error) {
	if direction == DirectionInvalid {
		return nil, false, fmt.Errorf("upsert %s: invalid direction", Token(identifier))
	}

	external := External{Identifier: identifier, Direction: direction}

	blob, err := Encode(external)
	if err != nil {
		return nil, false, err
	}

	k := key{internal: internalID, token: external.Token(), direction: direction}

	// First pass: the index built this session.
	if c, ok := s.index[k]; ok {
		s.update(c, external, blob)
		return c, false, nil
	}

	// Second pass: records of the same thing the index does not know yet.
	for _, r := range s.config.RecordsFor(internalID) {
		stored := Decode(r.ExternalID)
		if !stored.Valid() || stored.Direction != direction || stored.Token() != k.token {
			continue
		}

		c, ok := s.byRecord[r.ID]
		if !ok {
			c = &Correspondence{RecordID: r.ID, InternalID: internalID, External: stored}
			s.add(c)
		}

		s.update(c, external, blob)

		return c, false, nil
	}

	r := &mapping.Record{ID: uuid.New(), InternalThing: internalID, ExternalID: blob}
	s.config.Correspondences = append(s.config.Correspondences, r)

	c = &Correspondence{RecordID: r.ID, InternalID: internalID, External: external}
	s.add(c)

	s.logger.Debug("correspondence created",
		zap.Stringer("internal", internalID),
		zap.String("identifier", k.token),
		zap.Stringer("direction", direction))

	return c, true, nil
}

// update rewrites the external payload of an existing correspondence.
func (s *Store) update(c *Correspondence, external External, blob string) {
	c.External = external

	if r, ok := s.config.Record(c.RecordID); ok {
		r.ExternalID = blob
	}
}

// Find returns the correspondence of (internalID, identifier, direction).
func (s *Store) Find(internalID uuid.UUID, identifier any, direction Direction) (*Correspondence, bool) {
	c, ok := s.index[key{internal: internalID, token: Token(identifier), direction: direction}]
	return c, ok
}

// FindByIdentifier returns every correspondence of the identifier in the
// given direction, in record order.
func (s *Store) FindByIdentifier(identifier any, direction Direction) []*Correspondence {
	return slices.Clone(s.byToken[tokenKey{token: Token(identifier), direction: direction}])
}

// IdentifiersOf returns the identifier tokens internalID corresponds to in
// the given direction.
func (s *Store) IdentifiersOf(internalID uuid.UUID, direction Direction) []string {
	var result []string

	for _, c := range s.entries {
		if c.InternalID == internalID && c.External.Direction == direction {
			result = append(result, c.External.Token())
		}
	}

	return result
}

// AllForDirection returns every correspondence of the direction, in record
// order. Degraded records are never returned.
func (s *Store) AllForDirection(direction Direction) []*Correspondence {
	var result []*Correspondence

	if direction == DirectionInvalid {
		return result
	}

	for _, c := range s.entries {
		if c.External.Direction == direction {
			result = append(result, c)
		}
	}

	return result
}

// Invalid returns the degraded records.
func (s *Store) Invalid() []*Correspondence {
	var result []*Correspondence

	for _, c := range s.entries {
		if !c.External.Valid() {
			result = append(result, c)
		}
	}

	return result
}

// Remove deletes a record. The deletion reaches the backing store with the
// next Persist.
func (s *Store) Remove(recordID uuid.UUID) bool {
	c, ok := s.byRecord[recordID]
	if !ok {
		return false
	}

	s.unindexEntry(c)
	delete(s.byRecord, recordID)
	s.entries = slices.DeleteFunc(s.entries, func(e *Correspondence) bool { return e == c })
	s.config.RemoveRecord(recordID)
	s.removed = append(s.removed, recordID)

	return true
}

// SetDesignation stores typeID under a reserved identifier, replacing any
// earlier designation.
func (s *Store) SetDesignation(reserved string, typeID uuid.UUID) error {
	for _, c := range s.FindByIdentifier(reserved, DirectionSourceToTarget) {
		if c.InternalID != typeID {
			s.Remove(c.RecordID)
		}
	}

	_, _, err := s.Upsert(typeID, reserved, DirectionSourceToTarget)

	return err
}

// Designation returns the parameter type id stored under a reserved
// identifier.
func (s *Store) Designation(reserved string) (uuid.UUID, bool) {
	c, ok := common.Last(s.byToken[tokenKey{token: reserved, direction: DirectionSourceToTarget}])
	if !ok {
		return uuid.Nil, false
	}

	return c.InternalID, true
}

// Persist writes every record, the pending deletions and the configuration
// itself to tx.
func (s *Store) Persist(ctx context.Context, tx Writer) error {
	for _, id := range s.removed {
		if err := tx.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete correspondence %s: %w", id, err)
		}
	}

	for _, r := range s.config.Correspondences {
		if err := tx.CreateOrUpdate(ctx, r); err != nil {
			return fmt.Errorf("failed to persist correspondence %s: %w", r.ID, err)
		}
	}

	if err := tx.CreateOrUpdate(ctx, s.config); err != nil {
		return fmt.Errorf("failed to persist configuration %s: %w", s.config.Name, err)
	}

	return nil
}

// Refresh replaces the working copy with the stored configuration and
// rebuilds the index. It must follow every commit that changed the
// configuration.
func (s *Store) Refresh(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("refresh configuration %s: no source", s.config.Name)
	}

	config, err := s.source.Fetch(ctx, s.config.ID)
	if err != nil {
		return fmt.Errorf("failed to refresh configuration %s: %w", s.config.Name, err)
	}

	s.reset(config)

	return nil
}
