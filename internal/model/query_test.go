package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computedSet(values ...string) *ValueSet {
	return &ValueSet{ID: uuid.New(), Computed: values, Switch: ValueKindComputed}
}

func TestParameter_QueryValues(t *testing.T) {
	boolType := &ParameterType{Named: NewNamed("is deployed", "isDeployed"), Class: ClassBoolean, Components: 1}
	textType := &ParameterType{Named: NewNamed("comment", "comment"), Class: ClassText, Components: 1}
	quantityType := &ParameterType{Named: NewNamed("position", "pos"), Class: ClassQuantity, Components: 2}

	def := NewElementDefinition("Satellite", "Satellite", nil)
	def.AddParameter(&Parameter{ID: uuid.New(), Type: boolType, ValueSets: []*ValueSet{computedSet("true")}})
	def.AddParameter(&Parameter{ID: uuid.New(), Type: textType, ValueSets: []*ValueSet{computedSet("text")}})
	def.AddParameter(&Parameter{ID: uuid.New(), Type: quantityType, ValueSets: []*ValueSet{computedSet("2", "0.42")}})

	p, ok := def.Parameter("isDeployed")
	require.True(t, ok)
	values, err := p.QueryValues(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{true}, values)

	p, ok = def.Parameter("comment")
	require.True(t, ok)
	values, err = p.QueryValues(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"text"}, values)

	p, ok = def.Parameter("pos")
	require.True(t, ok)
	series, err := p.QueryQuantity(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 0.42}, series)
	assert.InDelta(t, 0.42, series[len(series)-1], 1e-12)
}

func TestParameter_QueryValuesErrors(t *testing.T) {
	quantityType := &ParameterType{Named: NewNamed("mass", "m"), Class: ClassQuantity, Components: 1}
	option := &Option{Named: NewNamed("Option 1", "opt1")}

	p := &Parameter{ID: uuid.New(), Type: quantityType, ValueSets: []*ValueSet{computedSet("-")}}

	_, err := p.QueryValues(nil, nil)
	require.Error(t, err, "placeholder is not a number")

	_, err = p.QueryValues(option, nil)
	require.ErrorIs(t, err, ErrNoValueSet)

	textType := &ParameterType{Named: NewNamed("comment", "comment"), Class: ClassText}
	_, err = (&Parameter{Type: textType}).QueryQuantity(nil, nil)
	require.Error(t, err)
}

func TestValueSet_Matches(t *testing.T) {
	o1 := &Option{Named: NewNamed("Option 1", "opt1")}
	o2 := &Option{Named: NewNamed("Option 2", "opt2")}
	s1 := &ActualState{Named: NewNamed("On", "on")}

	vs := &ValueSet{ActualOption: o1, ActualState: s1}

	assert.True(t, vs.Matches(o1, s1))
	assert.False(t, vs.Matches(o2, s1))
	assert.False(t, vs.Matches(o1, nil))
	assert.False(t, vs.Matches(nil, nil))
	assert.True(t, (&ValueSet{}).Matches(nil, nil))
}

func TestElementDefinition_Indexes(t *testing.T) {
	owner := &DomainOfExpertise{Named: NewNamed("System Engineering", "SYS")}
	root := NewElementDefinition("Root", "Root", owner)
	bolt := NewElementDefinition("Bolt", "Bolt", owner)

	root.AddContainedElement(NewElementUsage("Bolt.1", "Bolt1", owner, bolt))

	u, ok := root.ContainedElement("Bolt1")
	require.True(t, ok)
	assert.Same(t, bolt, u.Definition())

	// Appending directly to the exported slice stays visible to the index.
	root.ContainedElements = append(root.ContainedElements, NewElementUsage("Bolt.2", "Bolt2", owner, bolt))
	_, ok = root.ContainedElement("Bolt2")
	assert.True(t, ok)

	_, ok = root.ContainedElement("Nut")
	assert.False(t, ok)

	it := NewIteration()
	it.AddDefinition(root)
	it.AddDefinition(bolt)
	assert.Same(t, root, it.TopElement)

	el, ok := it.Element(u.ID)
	require.True(t, ok)
	assert.Same(t, u, el)

	byName, err := it.ElementByShortName("Bolt2")
	require.NoError(t, err)
	assert.Equal(t, "Bolt.2", byName.Ident().Name)

	_, err = it.ElementByShortName("Nut")
	require.ErrorIs(t, err, ErrNotFound)
}
