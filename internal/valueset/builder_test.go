package valueset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"product-sync/internal/model"
)

func options(n int) []*model.Option {
	result := make([]*model.Option, n)
	for i := range result {
		name := fmt.Sprintf("opt%d", i+1)
		result[i] = &model.Option{Named: model.NewNamed(name, name)}
	}

	return result
}

func stateList(names ...string) *model.ActualFiniteStateList {
	l := &model.ActualFiniteStateList{Named: model.NewNamed("Modes", "modes")}
	for _, n := range names {
		l.States = append(l.States, &model.ActualState{Named: model.NewNamed(n, n)})
	}

	return l
}

func TestBuilder_OptionOnlyArity(t *testing.T) {
	for _, k := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d options", k), func(t *testing.T) {
			opts := options(k)
			b := NewBuilder(nil, opts, Selection{Option: opts[0]})

			sets := b.Build(OptionOnly{}, 4.2)
			require.Len(t, sets, k)

			seen := make(map[*model.Option]bool)
			for _, vs := range sets {
				require.NotNil(t, vs.ActualOption)
				assert.Nil(t, vs.ActualState)
				assert.False(t, seen[vs.ActualOption], "option used twice")
				seen[vs.ActualOption] = true
			}
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	opts := options(2)
	modes := stateList("on", "off", "safe")

	tests := []struct {
		name      string
		selection Selection
		profile   Profile
		wantSets  int
		wantKind  Profile
	}{
		{name: "none", profile: None{}, wantSets: 1, wantKind: None{}},
		{name: "option without selection", profile: OptionOnly{}, wantSets: 1, wantKind: None{}},
		{name: "state", selection: Selection{State: modes.States[0]}, profile: StateOnly{States: modes}, wantSets: 3, wantKind: StateOnly{States: modes}},
		{name: "state without selection", profile: StateOnly{States: modes}, wantSets: 1, wantKind: None{}},
		{name: "option and state", selection: Selection{Option: opts[1]}, profile: OptionAndState{States: modes}, wantSets: 6, wantKind: OptionAndState{States: modes}},
		{name: "option and state with only state selected", selection: Selection{State: modes.States[1]}, profile: OptionAndState{States: modes}, wantSets: 3, wantKind: StateOnly{States: modes}},
		{name: "option and state without state list", selection: Selection{Option: opts[0]}, profile: OptionAndState{}, wantSets: 2, wantKind: OptionOnly{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(nil, opts, tt.selection)

			assert.Equal(t, tt.wantKind, b.Effective(tt.profile))

			sets := b.Build(tt.profile, 1.5, "x")
			require.Len(t, sets, tt.wantSets)

			for _, vs := range sets {
				assert.Equal(t, []string{"1.5", "x"}, vs.Computed)
				assert.Equal(t, []string{"-", "-"}, vs.Manual)
				assert.Equal(t, []string{"-", "-"}, vs.Reference)
				assert.Equal(t, []string{"-", "-"}, vs.Formula)
				assert.Equal(t, []string{"-", "-"}, vs.Published)
				assert.Equal(t, model.ValueKindComputed, vs.Switch)
			}
		})
	}
}

func TestBuilder_BuildOptionAndStateCrossProduct(t *testing.T) {
	opts := options(2)
	modes := stateList("on", "off")
	b := NewBuilder(nil, opts, Selection{Option: opts[0], State: modes.States[0]})

	sets := b.Build(OptionAndState{States: modes}, 1)
	require.Len(t, sets, 4)

	for _, o := range opts {
		for _, s := range modes.States {
			found := 0
			for _, vs := range sets {
				if vs.Matches(o, s) {
					found++
				}
			}

			assert.Equal(t, 1, found, "%s/%s", o.ShortName, s.ShortName)
		}
	}
}

func TestBuilder_Update(t *testing.T) {
	opts := options(2)
	mass := &model.ParameterType{Named: model.NewNamed("mass", "m"), Class: model.ClassQuantity, Components: 1}

	t.Run("independent parameter", func(t *testing.T) {
		b := NewBuilder(nil, opts, Selection{})
		p := &model.Parameter{Type: mass, ValueSets: b.Build(None{}, 1.0)}

		require.NoError(t, b.Update(p, 2.25))
		require.Len(t, p.ValueSets, 1)
		assert.Equal(t, []string{"2.25"}, p.ValueSets[0].Computed)
	})

	t.Run("selected option only", func(t *testing.T) {
		b := NewBuilder(nil, opts, Selection{Option: opts[1]})
		p := &model.Parameter{Type: mass, IsOptionDependent: true, ValueSets: b.Build(OptionOnly{}, 1.0)}

		require.NoError(t, b.Update(p, 3.0))

		vs1, _ := p.ValueSet(opts[0], nil)
		vs2, _ := p.ValueSet(opts[1], nil)
		assert.Equal(t, []string{"1"}, vs1.Computed)
		assert.Equal(t, []string{"3"}, vs2.Computed)
	})

	t.Run("missing set is appended", func(t *testing.T) {
		extra := &model.Option{Named: model.NewNamed("late", "late")}
		b := NewBuilder(nil, opts, Selection{Option: extra})
		p := &model.Parameter{Type: mass, IsOptionDependent: true}

		require.NoError(t, b.Update(p, 7.0))
		require.Len(t, p.ValueSets, 1)
		assert.Same(t, extra, p.ValueSets[0].ActualOption)
	})

	t.Run("dynamic arity resizes placeholders", func(t *testing.T) {
		b := NewBuilder(nil, opts, Selection{})
		p := &model.Parameter{Type: mass, ValueSets: b.Build(None{}, "a", "b")}

		require.NoError(t, b.Update(p, "a", "b", "c", "d"))
		assert.Len(t, p.ValueSets[0].Manual, 4)
	})
}

func TestBuilder_UpdateSkipsWithoutSelection(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	opts := options(2)
	modes := stateList("on", "off")
	mass := &model.ParameterType{Named: model.NewNamed("mass", "m"), Class: model.ClassQuantity, Components: 1}

	b := NewBuilder(zap.New(core), opts, Selection{})

	p := &model.Parameter{Type: mass, IsOptionDependent: true}
	err := b.Update(p, 1.0)
	require.ErrorIs(t, err, ErrNoSelection)
	assert.Empty(t, p.ValueSets)

	p = &model.Parameter{Type: mass, StateDependence: modes}
	b.Selection.State = &model.ActualState{Named: model.NewNamed("foreign", "foreign")}
	err = b.Update(p, 1.0)
	require.ErrorIs(t, err, ErrNoSelection)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "m", logs.All()[0].ContextMap()["parameter"])
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0.42, "0.42"},
		{2.0, "2"},
		{1e21, "1000000000000000000000"},
		{float32(0.1), "0.1"},
		{-3, "-3"},
		{int64(12), "12"},
		{true, "true"},
		{"steel", "steel"},
		{model.ClassText, "text"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestProfileFlags(t *testing.T) {
	modes := stateList("on")

	for _, p := range []Profile{None{}, OptionOnly{}, StateOnly{States: modes}, OptionAndState{States: modes}} {
		opt, states := Flags(p)
		assert.Equal(t, p, NewProfile(opt, states))
	}

	assert.Equal(t, OptionOnly{}, ProfileOf(&model.Parameter{IsOptionDependent: true}))
}

func TestBuilder_Mirror(t *testing.T) {
	opts := options(3)
	b := NewBuilder(nil, opts, Selection{Option: opts[0]})

	template := b.Build(OptionOnly{}, 1.0)
	mirrored := b.Mirror(template, 2.0)

	require.Len(t, mirrored, len(template))

	for i, vs := range mirrored {
		assert.Same(t, template[i].ActualOption, vs.ActualOption)
		assert.NotEqual(t, template[i].ID, vs.ID)
		assert.Equal(t, []string{"2"}, vs.Computed)
	}
}
