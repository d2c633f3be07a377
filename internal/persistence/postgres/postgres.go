// Package postgres provides a persistence.Backend on PostgreSQL.
//
// Configurations live in two tables:
//
//	sync_configurations(id uuid primary key, name text unique)
//	sync_correspondences(id uuid primary key, configuration_id uuid, position int,
//	                     internal_thing uuid, external_id text)
//
// Writing a configuration replaces its record set; writing a single record
// updates the row of an already stored record.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"product-sync/internal/mapping"
	"product-sync/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_configurations (
	id   uuid PRIMARY KEY,
	name text NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS sync_correspondences (
	id               uuid PRIMARY KEY,
	configuration_id uuid NOT NULL REFERENCES sync_configurations(id) ON DELETE CASCADE,
	position         integer NOT NULL,
	internal_thing   uuid NOT NULL,
	external_id      text NOT NULL
);
CREATE INDEX IF NOT EXISTS sync_correspondences_configuration_idx
	ON sync_correspondences (configuration_id, position);
`

// Store is a PostgreSQL configuration store.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore connects to the database at dsn.
func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{pool: pool, logger: logger.Named("postgres")}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Fetch implements persistence.Backend.
func (s *Store) Fetch(ctx context.Context, id uuid.UUID) (*mapping.Configuration, error) {
	return s.fetch(ctx, `SELECT id::text, name FROM sync_configurations WHERE id = $1`, id.String())
}

// FindByName implements persistence.Backend.
func (s *Store) FindByName(ctx context.Context, name string) (*mapping.Configuration, error) {
	return s.fetch(ctx, `SELECT id::text, name FROM sync_configurations WHERE name = $1`, name)
}

func (s *Store) fetch(ctx context.Context, query string, arg string) (*mapping.Configuration, error) {
	var (
		rawID string
		c     mapping.Configuration
	)

	err := s.pool.QueryRow(ctx, query, arg).Scan(&rawID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("configuration %q: %w", arg, persistence.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query configuration %q: %w", arg, err)
	}

	if c.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("failed to parse configuration id %q: %w", rawID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, internal_thing::text, external_id
		FROM sync_correspondences
		WHERE configuration_id = $1
		ORDER BY position
	`, rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to query correspondences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, internal string

		r := &mapping.Record{}
		if err := rows.Scan(&recordID, &internal, &r.ExternalID); err != nil {
			return nil, fmt.Errorf("failed to scan correspondence: %w", err)
		}

		if r.ID, err = uuid.Parse(recordID); err != nil {
			return nil, fmt.Errorf("failed to parse record id %q: %w", recordID, err)
		}

		if r.InternalThing, err = uuid.Parse(internal); err != nil {
			return nil, fmt.Errorf("failed to parse internal thing %q: %w", internal, err)
		}

		c.Correspondences = append(c.Correspondences, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating correspondences: %w", err)
	}

	return &c, nil
}

// Begin implements persistence.Backend.
func (s *Store) Begin(ctx context.Context) (persistence.Transaction, error) {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &tx{tx: pgtx, logger: s.logger}, nil
}

type tx struct {
	tx     pgx.Tx
	logger *zap.Logger
}

func (t *tx) CreateOrUpdate(ctx context.Context, thing mapping.Persistable) error {
	switch v := thing.(type) {
	case *mapping.Configuration:
		return t.writeConfiguration(ctx, v)
	case *mapping.Record:
		return t.writeRecord(ctx, v)
	default:
		return fmt.Errorf("%w: %T", persistence.ErrUnsupported, thing)
	}
}

func (t *tx) writeConfiguration(ctx context.Context, c *mapping.Configuration) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sync_configurations (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, c.ID.String(), c.Name)
	if err != nil {
		return fmt.Errorf("failed to write configuration %s: %w", c.Name, err)
	}

	ids := make([]string, len(c.Correspondences))

	batch := &pgx.Batch{}
	for i, r := range c.Correspondences {
		ids[i] = r.ID.String()
		batch.Queue(`
			INSERT INTO sync_correspondences (id, configuration_id, position, internal_thing, external_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				configuration_id = EXCLUDED.configuration_id,
				position = EXCLUDED.position,
				internal_thing = EXCLUDED.internal_thing,
				external_id = EXCLUDED.external_id
		`, ids[i], c.ID.String(), i, r.InternalThing.String(), r.ExternalID)
	}

	if batch.Len() > 0 {
		if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to write correspondences of %s: %w", c.Name, err)
		}
	}

	tag, err := t.tx.Exec(ctx, `
		DELETE FROM sync_correspondences
		WHERE configuration_id = $1 AND NOT (id::text = ANY($2))
	`, c.ID.String(), ids)
	if err != nil {
		return fmt.Errorf("failed to prune correspondences of %s: %w", c.Name, err)
	}

	t.logger.Debug("configuration written",
		zap.String("configuration", c.Name),
		zap.Int("records", len(ids)),
		zap.Int64("pruned", tag.RowsAffected()))

	return nil
}

func (t *tx) writeRecord(ctx context.Context, r *mapping.Record) error {
	// New records have no row yet; the configuration write inserts them.
	_, err := t.tx.Exec(ctx, `
		UPDATE sync_correspondences SET internal_thing = $2, external_id = $3 WHERE id = $1
	`, r.ID.String(), r.InternalThing.String(), r.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to write correspondence %s: %w", r.ID, err)
	}

	return nil
}

func (t *tx) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM sync_correspondences WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete correspondence %s: %w", id, err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := t.tx.Exec(ctx, `DELETE FROM sync_configurations WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to delete configuration %s: %w", id, err)
	}

	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return persistence.ErrTxClosed
		}

		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return persistence.ErrTxClosed
		}

		return fmt.Errorf("failed to rollback: %w", err)
	}

	return nil
}
