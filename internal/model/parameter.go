package model

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"product-sync/internal/common"
)

// Class is the value class of a ParameterType.
type Class int

const (
	ClassQuantity Class = iota
	ClassBoolean
	ClassText
	ClassEnumeration
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassQuantity:
		return "quantity"
	case ClassBoolean:
		return "boolean"
	case ClassText:
		return "text"
	case ClassEnumeration:
		return "enumeration"
	default:
		return common.UnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(text []byte) error {
	for _, candidate := range []Class{ClassQuantity, ClassBoolean, ClassText, ClassEnumeration} {
		if candidate.String() == string(text) {
			*c = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown parameter class %q", text)
}

// DynamicArity marks a ParameterType whose number of values is not fixed.
const DynamicArity = 0

// ParameterType is the concrete type handle a Parameter is typed by.
type ParameterType struct {
	Named
	Class Class
	// Components is the number of values per value set, DynamicArity for
	// multi-valued types such as material and color.
	Components int
	// Literals lists the allowed values of an enumeration.
	Literals []string
}

// ValueKind names a value slot of a ValueSet.
type ValueKind int

const (
	ValueKindComputed ValueKind = iota
	ValueKindManual
	ValueKindReference
	ValueKindFormula
	ValueKindPublished
)

// String returns the slot name.
func (k ValueKind) String() string {
	switch k {
	case ValueKindComputed:
		return "computed"
	case ValueKindManual:
		return "manual"
	case ValueKindReference:
		return "reference"
	case ValueKindFormula:
		return "formula"
	case ValueKindPublished:
		return "published"
	default:
		return common.UnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ValueKind) UnmarshalText(text []byte) error {
	for _, candidate := range []ValueKind{
		ValueKindComputed, ValueKindManual, ValueKindReference, ValueKindFormula, ValueKindPublished,
	} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown value kind %q", text)
}

// ValueSet holds the values of a parameter for one option/state combination.
type ValueSet struct {
	ID           uuid.UUID
	ActualOption *Option
	ActualState  *ActualState
	Manual       []string
	Computed     []string
	Reference    []string
	Formula      []string
	Published    []string
	// Switch names the slot that carries the actual value.
	Switch ValueKind
}

// Slot returns the values stored in the given slot.
func (v *ValueSet) Slot(kind ValueKind) []string {
	switch kind {
	case ValueKindComputed:
		return v.Computed
	case ValueKindManual:
		return v.Manual
	case ValueKindReference:
		return v.Reference
	case ValueKindFormula:
		return v.Formula
	case ValueKindPublished:
		return v.Published
	default:
		return nil
	}
}

// ActualValue returns the values of the slot selected by Switch.
func (v *ValueSet) ActualValue() []string {
	return v.Slot(v.Switch)
}

// Matches reports whether the value set is scoped to exactly the given
// option and state; nil matches an unset scope.
func (v *ValueSet) Matches(option *Option, state *ActualState) bool {
	return sameOption(v.ActualOption, option) && sameState(v.ActualState, state)
}

func sameOption(a, b *Option) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.ID == b.ID
}

func sameState(a, b *ActualState) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.ID == b.ID
}

// ValueSetOwner is implemented by Parameter and ParameterOverride.
type ValueSetOwner interface {
	// Dependency reports option dependence and the state list, if any.
	Dependency() (optionDependent bool, states *ActualFiniteStateList)
	// Sets returns the owned value sets.
	Sets() []*ValueSet
	// AddValueSet appends a value set.
	AddValueSet(vs *ValueSet)
	// TypeShortName is the short name of the parameter type.
	TypeShortName() string
}

// Parameter is a typed property of an ElementDefinition.
type Parameter struct {
	ID                uuid.UUID
	Type              *ParameterType
	Owner             *DomainOfExpertise
	IsOptionDependent bool
	StateDependence   *ActualFiniteStateList
	ValueSets         []*ValueSet
}

// Dependency implements ValueSetOwner.
func (p *Parameter) Dependency() (bool, *ActualFiniteStateList) {
	return p.IsOptionDependent, p.StateDependence
}

// Sets implements ValueSetOwner.
func (p *Parameter) Sets() []*ValueSet { return p.ValueSets }

// AddValueSet implements ValueSetOwner.
func (p *Parameter) AddValueSet(vs *ValueSet) { p.ValueSets = append(p.ValueSets, vs) }

// TypeShortName implements ValueSetOwner.
func (p *Parameter) TypeShortName() string { return p.Type.ShortName }

// ValueSet returns the value set scoped to option and state.
func (p *Parameter) ValueSet(option *Option, state *ActualState) (*ValueSet, bool) {
	return findValueSet(p.ValueSets, option, state)
}

// ParameterOverride overrides a Parameter's values for one ElementUsage.
type ParameterOverride struct {
	ID        uuid.UUID
	Parameter *Parameter
	Owner     *DomainOfExpertise
	ValueSets []*ValueSet
}

// Dependency implements ValueSetOwner; an override follows its parameter.
func (o *ParameterOverride) Dependency() (bool, *ActualFiniteStateList) {
	return o.Parameter.Dependency()
}

// Sets implements ValueSetOwner.
func (o *ParameterOverride) Sets() []*ValueSet { return o.ValueSets }

// AddValueSet implements ValueSetOwner.
func (o *ParameterOverride) AddValueSet(vs *ValueSet) { o.ValueSets = append(o.ValueSets, vs) }

// TypeShortName implements ValueSetOwner.
func (o *ParameterOverride) TypeShortName() string { return o.Parameter.Type.ShortName }

// ValueSet returns the value set scoped to option and state.
func (o *ParameterOverride) ValueSet(option *Option, state *ActualState) (*ValueSet, bool) {
	return findValueSet(o.ValueSets, option, state)
}

func findValueSet(sets []*ValueSet, option *Option, state *ActualState) (*ValueSet, bool) {
	i := slices.IndexFunc(sets, func(vs *ValueSet) bool { return vs.Matches(option, state) })
	if i < 0 {
		return nil, false
	}

	return sets[i], true
}
