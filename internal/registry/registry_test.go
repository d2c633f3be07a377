package registry

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-sync/internal/diagnostic"
	"product-sync/internal/model"
)

func quantity(name, shortName string, components int) *model.ParameterType {
	return &model.ParameterType{Named: model.NewNamed(name, shortName), Class: model.ClassQuantity, Components: components}
}

func testIteration() *model.Iteration {
	it := model.NewIteration()
	it.ParameterTypes = []*model.ParameterType{
		quantity("mass", "m", 1),
		quantity("volume", "volume", 1),
		{Named: model.NewNamed("material", "material"), Class: model.ClassText},
		{Named: model.NewNamed("finish", "finish"), Class: model.ClassText},
	}
	it.FiniteStateLists = []*model.ActualFiniteStateList{{Named: model.NewNamed("Modes", "modes")}}

	return it
}

func TestRegistry_Resolve(t *testing.T) {
	it := testIteration()
	r := New(it, map[Kind]Binding{
		KindVolume: {ShortName: "volume", OptionDependent: true, StateList: "modes"},
		KindMass:   {OptionDependent: true},
	})

	mass, err := r.Resolve(KindMass)
	require.NoError(t, err)
	assert.Equal(t, "m", mass.Type.ShortName)
	assert.True(t, mass.OptionDependent)
	assert.Nil(t, mass.States)

	volume, err := r.Resolve(KindVolume)
	require.NoError(t, err)
	assert.Equal(t, "volume", volume.Type.ShortName)
	assert.Same(t, it.FiniteStateLists[0], volume.States)

	_, err = r.Resolve(Kind("temperature"))
	require.Error(t, err)
}

func TestRegistry_ResolveSuggests(t *testing.T) {
	r := New(testIteration(), nil)

	// The default short name "vol" is missing; "volume" is close enough.
	_, err := r.Resolve(KindVolume)
	require.ErrorIs(t, err, ErrParameterTypeNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "vol", nf.ShortName)
	assert.Contains(t, nf.Suggestions, "volume")
}

func TestRegistry_UnknownStateList(t *testing.T) {
	r := New(testIteration(), map[Kind]Binding{KindMass: {StateList: "phases"}})

	_, err := r.Resolve(KindMass)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegistry_Pin(t *testing.T) {
	it := testIteration()
	r := New(it, nil)

	finish := it.ParameterTypes[3]
	require.NoError(t, r.Pin(KindColor, finish.ID))

	color, err := r.Resolve(KindColor)
	require.NoError(t, err)
	assert.Same(t, finish, color.Type)

	require.ErrorIs(t, r.Pin(KindMaterial, uuid.New()), ErrParameterTypeNotFound)
}

func TestRegistry_Check(t *testing.T) {
	r := New(testIteration(), nil)

	res := r.Check()
	assert.True(t, res.IsValid())
	assert.True(t, res.HasCode(diagnostic.CodeParameterTypeMissing))

	// m and material resolve; every other kind is reported.
	assert.Len(t, res.Warnings, len(Kinds())-2)
}
