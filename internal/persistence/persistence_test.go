package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-sync/internal/mapping"
)

type unknownThing struct{}

func (unknownThing) PersistentID() uuid.UUID { return uuid.Nil }

func TestApply(t *testing.T) {
	cfg := mapping.NewConfiguration("c")
	kept := &mapping.Record{ID: uuid.New(), InternalThing: uuid.New(), ExternalID: "a"}
	dropped := &mapping.Record{ID: uuid.New(), InternalThing: uuid.New(), ExternalID: "b"}
	cfg.Correspondences = []*mapping.Record{kept, dropped}

	state := map[uuid.UUID]*mapping.Configuration{cfg.ID: cfg}

	updated := &mapping.Record{ID: kept.ID, InternalThing: kept.InternalThing, ExternalID: "a2"}

	next, err := Apply(state, []Op{
		{Thing: updated, ID: updated.ID},
		{ID: dropped.ID},
		{ID: uuid.New()},
	})
	require.NoError(t, err)

	got := next[cfg.ID]
	require.Len(t, got.Correspondences, 1)
	assert.Equal(t, "a2", got.Correspondences[0].ExternalID)

	// The input state is untouched.
	assert.Len(t, cfg.Correspondences, 2)
	assert.Equal(t, "a", kept.ExternalID)
}

func TestApply_ConfigurationsFirst(t *testing.T) {
	cfg := mapping.NewConfiguration("c")
	r := &mapping.Record{ID: uuid.New(), InternalThing: uuid.New(), ExternalID: "a"}
	cfg.Correspondences = []*mapping.Record{r}

	// Records precede their configuration, as the correspondence store
	// writes them.
	next, err := Apply(map[uuid.UUID]*mapping.Configuration{}, []Op{
		{Thing: r, ID: r.ID},
		{Thing: cfg, ID: cfg.ID},
	})
	require.NoError(t, err)
	require.Contains(t, next, cfg.ID)
	assert.NotSame(t, cfg, next[cfg.ID])

	next, err = Apply(next, []Op{{ID: cfg.ID}})
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestApply_OrphanRecord(t *testing.T) {
	r := &mapping.Record{ID: uuid.New()}

	_, err := Apply(map[uuid.UUID]*mapping.Configuration{}, []Op{{Thing: r, ID: r.ID}})
	require.ErrorIs(t, err, ErrOrphanRecord)
}

func TestBuffer(t *testing.T) {
	var b Buffer

	require.NoError(t, b.Add(mapping.NewConfiguration("c")))
	require.NoError(t, b.Remove(uuid.New()))
	require.ErrorIs(t, b.Add(unknownThing{}), ErrUnsupported)

	ops, err := b.Close()
	require.NoError(t, err)
	assert.Len(t, ops, 2)

	_, err = b.Close()
	require.ErrorIs(t, err, ErrTxClosed)
	require.ErrorIs(t, b.Remove(uuid.New()), ErrTxClosed)
}
