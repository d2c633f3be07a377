package rule

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"product-sync/internal/correspondence"
	"product-sync/internal/mapping"
	"product-sync/internal/metrics"
	"product-sync/internal/model"
	"product-sync/internal/product"
	"product-sync/internal/registry"
)

func quantityType(shortName string, components int) *model.ParameterType {
	return &model.ParameterType{
		Named:      model.NewNamed(shortName, shortName),
		Class:      model.ClassQuantity,
		Components: components,
	}
}

func textType(shortName string, components int) *model.ParameterType {
	return &model.ParameterType{
		Named:      model.NewNamed(shortName, shortName),
		Class:      model.ClassText,
		Components: components,
	}
}

// newIteration returns an iteration carrying every parameter type the
// rules write, two options and one state list.
func newIteration() *model.Iteration {
	it := model.NewIteration()

	it.Domains = []*model.DomainOfExpertise{{Named: model.NewNamed("Systems", "SYS")}}
	it.Options = []*model.Option{
		{Named: model.NewNamed("Option 1", "opt1")},
		{Named: model.NewNamed("Option 2", "opt2")},
	}
	it.FiniteStateLists = []*model.ActualFiniteStateList{{
		Named: model.NewNamed("Modes", "modes"),
		States: []*model.ActualState{
			{Named: model.NewNamed("Running", "running")},
			{Named: model.NewNamed("Idle", "idle")},
		},
	}}

	it.ParameterTypes = []*model.ParameterType{
		quantityType("m", 1),
		quantityType("vol", 1),
		quantityType("cog", 3),
		quantityType("moi", 9),
		quantityType("position", 3),
		quantityType("orientation", 9),
		quantityType("rel_position", 3),
		quantityType("rel_orientation", 9),
		textType("kind", 1),
		quantityType("l", 1),
		quantityType("wid_diameter", 1),
		quantityType("h", 1),
		quantityType("angle", 1),
		quantityType("support_angle", 1),
		quantityType("thickn", 1),
		quantityType("area", 1),
		quantityType("density", 1),
		quantityType("mass_margin", 1),
		textType("material", model.DynamicArity),
		textType("color", model.DynamicArity),
	}

	return it
}

type fixture struct {
	it       *model.Iteration
	store    *correspondence.Store
	registry *registry.Registry
	cfg      Config
}

func newFixture(t *testing.T, it *model.Iteration, bindings map[registry.Kind]registry.Binding) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	reg := registry.New(it, bindings)
	store := correspondence.NewStore(logger, mapping.NewConfiguration("test"), nil)

	return &fixture{
		it:       it,
		store:    store,
		registry: reg,
		cfg: Config{
			Iteration: it,
			Store:     store,
			Registry:  reg,
			Domain:    it.Domains[0],
			Logger:    logger,
			Recorder:  metrics.NewRecorder(t.Name()),
		},
	}
}

func (f *fixture) withLogger(logger *zap.Logger) *fixture {
	f.cfg.Logger = logger
	return f
}

func parseTree(t *testing.T, doc string) *product.Node {
	t.Helper()

	root, err := product.ParseTree([]byte(doc))
	require.NoError(t, err)

	return root
}

