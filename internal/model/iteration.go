package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Iteration is the snapshot of the target store: reference data and the
// element definitions of the product.
type Iteration struct {
	ID               uuid.UUID
	Domains          []*DomainOfExpertise
	Options          []*Option
	FiniteStateLists []*ActualFiniteStateList
	ParameterTypes   []*ParameterType
	Definitions      []*ElementDefinition
	TopElement       *ElementDefinition

	definitions shortNameIndex[*ElementDefinition]
	types       shortNameIndex[*ParameterType]
	options     shortNameIndex[*Option]
	domains     shortNameIndex[*DomainOfExpertise]
	stateLists  shortNameIndex[*ActualFiniteStateList]
}

// NewIteration returns an empty iteration with a fresh id.
func NewIteration() *Iteration {
	return &Iteration{ID: uuid.New()}
}

// Definition returns the element definition with the given short name.
func (it *Iteration) Definition(shortName string) (*ElementDefinition, bool) {
	return it.definitions.lookup(it.Definitions, shortName)
}

// AddDefinition registers a new element definition. The first definition
// added becomes the top element.
func (it *Iteration) AddDefinition(def *ElementDefinition) {
	it.Definitions = append(it.Definitions, def)
	if it.TopElement == nil {
		it.TopElement = def
	}
}

// ParameterType returns the parameter type with the given short name.
func (it *Iteration) ParameterType(shortName string) (*ParameterType, bool) {
	return it.types.lookup(it.ParameterTypes, shortName)
}

// ParameterTypeByID returns the parameter type with the given id.
func (it *Iteration) ParameterTypeByID(id uuid.UUID) (*ParameterType, bool) {
	return findByID(it.ParameterTypes, id)
}

// ParameterTypeShortNames lists the short names of all parameter types.
func (it *Iteration) ParameterTypeShortNames() []string {
	names := make([]string, len(it.ParameterTypes))
	for i, pt := range it.ParameterTypes {
		names[i] = pt.ShortName
	}

	return names
}

// Option returns the option with the given short name.
func (it *Iteration) Option(shortName string) (*Option, bool) {
	return it.options.lookup(it.Options, shortName)
}

// OptionByID returns the option with the given id.
func (it *Iteration) OptionByID(id uuid.UUID) (*Option, bool) {
	return findByID(it.Options, id)
}

// Domain returns the domain of expertise with the given short name.
func (it *Iteration) Domain(shortName string) (*DomainOfExpertise, bool) {
	return it.domains.lookup(it.Domains, shortName)
}

// FiniteStateList returns the state list with the given short name.
func (it *Iteration) FiniteStateList(shortName string) (*ActualFiniteStateList, bool) {
	return it.stateLists.lookup(it.FiniteStateLists, shortName)
}

// StateByID returns the actual state with the given id, searching every list.
func (it *Iteration) StateByID(id uuid.UUID) (*ActualState, bool) {
	for _, l := range it.FiniteStateLists {
		if s, ok := findByID(l.States, id); ok {
			return s, true
		}
	}

	return nil, false
}

// State returns the state with the given short name from any list.
func (it *Iteration) State(shortName string) (*ActualState, bool) {
	for _, l := range it.FiniteStateLists {
		if s, ok := l.State(shortName); ok {
			return s, true
		}
	}

	return nil, false
}

// Element returns the definition or usage with the given id.
func (it *Iteration) Element(id uuid.UUID) (Element, bool) {
	if d, ok := findByID(it.Definitions, id); ok {
		return d, true
	}

	if u, ok := findUsage(it.Definitions, id); ok {
		return u, true
	}

	return nil, false
}

// ElementByShortName returns the definition with the given short name, or
// failing that the first usage with that short name.
func (it *Iteration) ElementByShortName(shortName string) (Element, error) {
	if d, ok := it.Definition(shortName); ok {
		return d, nil
	}

	for _, d := range it.Definitions {
		if u, ok := d.ContainedElement(shortName); ok {
			return u, nil
		}
	}

	return nil, fmt.Errorf("element %q: %w", shortName, ErrNotFound)
}
