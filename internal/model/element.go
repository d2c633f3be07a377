package model

import "github.com/google/uuid"

// Element is an ElementDefinition or an ElementUsage.
type Element interface {
	Ident() *Named
	// Definition returns the definition itself, or the one a usage instantiates.
	Definition() *ElementDefinition
}

// ElementDefinition is a reusable, globally identified description of a
// product element and its parameters.
type ElementDefinition struct {
	Named
	Owner             *DomainOfExpertise
	Parameters        []*Parameter
	ContainedElements []*ElementUsage

	usages shortNameIndex[*ElementUsage]
	params map[string]*Parameter
}

// NewElementDefinition creates a definition with a fresh id.
func NewElementDefinition(name, shortName string, owner *DomainOfExpertise) *ElementDefinition {
	return &ElementDefinition{Named: NewNamed(name, shortName), Owner: owner}
}

// Definition implements Element.
func (d *ElementDefinition) Definition() *ElementDefinition { return d }

// ContainedElement returns the usage with the given short name.
func (d *ElementDefinition) ContainedElement(shortName string) (*ElementUsage, bool) {
	return d.usages.lookup(d.ContainedElements, shortName)
}

// AddContainedElement appends a usage to the definition.
func (d *ElementDefinition) AddContainedElement(u *ElementUsage) {
	d.ContainedElements = append(d.ContainedElements, u)
}

// Parameter returns the parameter typed by the given parameter type short name.
func (d *ElementDefinition) Parameter(typeShortName string) (*Parameter, bool) {
	if len(d.params) != len(d.Parameters) {
		d.params = make(map[string]*Parameter, len(d.Parameters))
		for _, p := range d.Parameters {
			if _, exists := d.params[p.Type.ShortName]; !exists {
				d.params[p.Type.ShortName] = p
			}
		}
	}

	p, ok := d.params[typeShortName]

	return p, ok
}

// AddParameter appends a parameter to the definition.
func (d *ElementDefinition) AddParameter(p *Parameter) {
	d.Parameters = append(d.Parameters, p)
}

// ElementUsage is an instance of a definition placed in a containing definition.
type ElementUsage struct {
	Named
	Owner              *DomainOfExpertise
	ElementDefinition  *ElementDefinition
	ParameterOverrides []*ParameterOverride
}

// NewElementUsage creates a usage of def with a fresh id.
func NewElementUsage(name, shortName string, owner *DomainOfExpertise, def *ElementDefinition) *ElementUsage {
	return &ElementUsage{Named: NewNamed(name, shortName), Owner: owner, ElementDefinition: def}
}

// Definition implements Element.
func (u *ElementUsage) Definition() *ElementDefinition { return u.ElementDefinition }

// Override returns the override of the parameter typed by typeShortName.
func (u *ElementUsage) Override(typeShortName string) (*ParameterOverride, bool) {
	for _, o := range u.ParameterOverrides {
		if o.Parameter.Type.ShortName == typeShortName {
			return o, true
		}
	}

	return nil, false
}

// AddOverride appends a parameter override to the usage.
func (u *ElementUsage) AddOverride(o *ParameterOverride) {
	u.ParameterOverrides = append(u.ParameterOverrides, o)
}

// findUsage searches every definition for a usage with the given id.
func findUsage(defs []*ElementDefinition, id uuid.UUID) (*ElementUsage, bool) {
	for _, d := range defs {
		if u, ok := findByID(d.ContainedElements, id); ok {
			return u, true
		}
	}

	return nil, false
}
