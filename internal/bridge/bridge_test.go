package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"product-sync/internal/correspondence"
	"product-sync/internal/diagnostic"
	"product-sync/internal/mapping"
	"product-sync/internal/model"
	"product-sync/internal/persistence"
	"product-sync/internal/persistence/memory"
	"product-sync/internal/product"
	"product-sync/internal/rule"
)

const tree = `
name: Root
kind: assembly
children:
  - name: Wheel
    kind: component
    children:
      - name: WheelPart
        kind: part
        mass: 2.5
`

const brokenTree = `
name: Wheel
kind: component
children:
  - name: WheelPart
    kind: part
`

type fakeConnector struct {
	tree         string
	materialized []product.Placeholder
	err          error
}

func (c *fakeConnector) ReadTree(_ context.Context) (*product.Node, error) {
	return product.ParseTree([]byte(c.tree))
}

func (c *fakeConnector) Materialize(_ context.Context, placeholders []product.Placeholder) error {
	if c.err != nil {
		return c.err
	}

	c.materialized = append(c.materialized, placeholders...)

	return nil
}

func newIteration() *model.Iteration {
	it := model.NewIteration()
	it.Domains = []*model.DomainOfExpertise{{Named: model.NewNamed("Systems", "SYS")}}
	it.ParameterTypes = []*model.ParameterType{
		{Named: model.NewNamed("mass", "m"), Class: model.ClassQuantity, Components: 1},
		{Named: model.NewNamed("material", "material"), Class: model.ClassText},
		{Named: model.NewNamed("color", "color"), Class: model.ClassText},
	}

	return it
}

func parse(t *testing.T, doc string) *product.Node {
	t.Helper()

	root, err := product.ParseTree([]byte(doc))
	require.NoError(t, err)

	return root
}

func openFacade(t *testing.T, backend persistence.Backend, connector product.Connector) *Facade {
	t.Helper()

	f := New(backend, connector, zaptest.NewLogger(t), Options{Domain: "SYS"})
	require.NoError(t, f.Open(context.Background(), t.Name()))

	return f
}

func TestFacade_PushPersists(t *testing.T) {
	backend := memory.NewStore()
	f := openFacade(t, backend, nil)
	it := newIteration()

	mapped, err := f.Push(context.Background(), parse(t, tree), it)
	require.NoError(t, err)
	assert.Len(t, mapped, 4)

	stored, err := backend.FindByName(context.Background(), t.Name())
	require.NoError(t, err)
	assert.Len(t, stored.Correspondences, f.Store().Len())
	assert.Equal(t, f.Store().Configuration().ID, stored.ID)

	root, ok := it.Definition("Root")
	require.True(t, ok)
	assert.Same(t, it.Domains[0], root.Owner)
}

func TestFacade_PushIsIdempotent(t *testing.T) {
	backend := memory.NewStore()
	f := openFacade(t, backend, nil)
	it := newIteration()

	_, err := f.Push(context.Background(), parse(t, tree), it)
	require.NoError(t, err)

	records := f.Store().Len()
	defs := len(it.Definitions)

	_, err = f.Push(context.Background(), parse(t, tree), it)
	require.NoError(t, err)

	assert.Equal(t, records, f.Store().Len())
	assert.Len(t, it.Definitions, defs)

	stored, err := backend.FindByName(context.Background(), t.Name())
	require.NoError(t, err)
	assert.Len(t, stored.Correspondences, records)
	assert.Equal(t, 1, backend.Len())
}

func TestFacade_ReopenRestoresStore(t *testing.T) {
	backend := memory.NewStore()
	f := openFacade(t, backend, nil)
	it := newIteration()

	_, err := f.Push(context.Background(), parse(t, tree), it)
	require.NoError(t, err)

	again := New(backend, nil, zaptest.NewLogger(t), Options{})
	require.NoError(t, again.Open(context.Background(), t.Name()))

	assert.Equal(t, f.Store().Len(), again.Store().Len())

	usage, ok := it.TopElement.ContainedElement("Wheel")
	require.True(t, ok)
	_, ok = again.Store().Find(usage.ID, "Root/Wheel", correspondence.DirectionSourceToTarget)
	assert.True(t, ok)
}

func TestFacade_FailedPushLeavesBackendUntouched(t *testing.T) {
	t.Run("never persisted", func(t *testing.T) {
		backend := memory.NewStore()
		f := openFacade(t, backend, nil)

		_, err := f.Push(context.Background(), parse(t, brokenTree), newIteration())
		require.ErrorIs(t, err, rule.ErrNoParentDefinition)

		_, err = backend.FindByName(context.Background(), t.Name())
		require.ErrorIs(t, err, persistence.ErrNotFound)
		assert.Zero(t, f.Store().Len())
	})

	t.Run("persisted", func(t *testing.T) {
		backend := memory.NewStore()
		f := openFacade(t, backend, nil)
		it := newIteration()

		_, err := f.Push(context.Background(), parse(t, tree), it)
		require.NoError(t, err)

		records := f.Store().Len()

		_, err = f.Push(context.Background(), parse(t, brokenTree), it)
		require.Error(t, err)

		assert.Equal(t, records, f.Store().Len())

		stored, err := backend.FindByName(context.Background(), t.Name())
		require.NoError(t, err)
		assert.Len(t, stored.Correspondences, records)
	})
}

func TestFacade_PushReadsTreeFromConnector(t *testing.T) {
	f := openFacade(t, memory.NewStore(), &fakeConnector{tree: tree})

	mapped, err := f.Push(context.Background(), nil, newIteration())
	require.NoError(t, err)
	assert.Len(t, mapped, 4)
}

func TestFacade_Pull(t *testing.T) {
	backend := memory.NewStore()
	connector := &fakeConnector{tree: tree}
	f := openFacade(t, backend, connector)
	it := newIteration()

	_, err := f.Push(context.Background(), nil, it)
	require.NoError(t, err)

	bracket := model.NewElementDefinition("Bracket", "Bracket", nil)
	it.AddDefinition(bracket)

	res, err := f.Pull(context.Background(), []rule.Request{{Element: bracket}, {Element: it.TopElement}}, nil, it)
	require.NoError(t, err)
	require.Len(t, res.Placeholders, 2)
	assert.Equal(t, res.Placeholders, connector.materialized)

	assert.Equal(t, product.ActionCreate, res.Placeholders[0].Action)
	assert.Equal(t, "Root/Bracket", res.Placeholders[0].Identifier)
	assert.Equal(t, product.ActionUpdate, res.Placeholders[1].Action)

	stored, err := backend.FindByName(context.Background(), t.Name())
	require.NoError(t, err)
	assert.Len(t, stored.Correspondences, f.Store().Len())
}

func TestFacade_FailedMaterializeRollsBack(t *testing.T) {
	backend := memory.NewStore()
	connector := &fakeConnector{tree: tree}
	f := openFacade(t, backend, connector)
	it := newIteration()

	_, err := f.Push(context.Background(), nil, it)
	require.NoError(t, err)

	records := f.Store().Len()
	connector.err = errors.New("cad tool closed")

	bracket := model.NewElementDefinition("Bracket", "Bracket", nil)
	it.AddDefinition(bracket)

	_, err = f.Pull(context.Background(), []rule.Request{{Element: bracket}}, nil, it)
	require.ErrorContains(t, err, "cad tool closed")
	assert.Equal(t, records, f.Store().Len())
	assert.Empty(t, f.Store().IdentifiersOf(bracket.ID, correspondence.DirectionTargetToSource))
}

func TestFacade_Guards(t *testing.T) {
	t.Run("not open", func(t *testing.T) {
		f := New(memory.NewStore(), nil, nil, Options{})

		_, err := f.Push(context.Background(), parse(t, tree), newIteration())
		require.ErrorIs(t, err, ErrNotOpen)

		_, err = f.Check(nil)
		require.ErrorIs(t, err, ErrNotOpen)
	})

	t.Run("busy", func(t *testing.T) {
		f := openFacade(t, memory.NewStore(), nil)

		f.mu.Lock()
		defer f.mu.Unlock()

		_, err := f.Push(context.Background(), parse(t, tree), newIteration())
		require.ErrorIs(t, err, ErrBusy)
	})

	t.Run("pull without connector", func(t *testing.T) {
		f := openFacade(t, memory.NewStore(), nil)

		_, err := f.Pull(context.Background(), nil, nil, newIteration())
		require.ErrorIs(t, err, ErrNoConnector)
	})

	t.Run("no iteration", func(t *testing.T) {
		f := openFacade(t, memory.NewStore(), nil)

		_, err := f.Push(context.Background(), parse(t, tree), nil)
		require.ErrorIs(t, err, ErrNoIteration)
	})
}

func TestFacade_UnknownSelectionWarns(t *testing.T) {
	f := New(memory.NewStore(), nil, zaptest.NewLogger(t), Options{Option: "nope"})
	require.NoError(t, f.Open(context.Background(), t.Name()))

	_, err := f.Push(context.Background(), parse(t, tree), newIteration())
	require.NoError(t, err)
	assert.True(t, f.Diagnostics().HasCode(diagnostic.CodeNoActiveSelection))
}

func TestFacade_Check(t *testing.T) {
	f := openFacade(t, memory.NewStore(), nil)

	f.Store().Configuration().Correspondences = append(f.Store().Configuration().Correspondences,
		&mapping.Record{ID: uuid.New(), InternalThing: uuid.New(), ExternalID: "not json"})

	diags, err := f.Check(newIteration())
	require.NoError(t, err)

	assert.True(t, diags.HasCode(diagnostic.CodeInvalidRecord))
	assert.True(t, diags.HasCode(diagnostic.CodeParameterTypeMissing), diags.String())
	assert.False(t, diags.HasErrors(), diags.String())
}
