package model

import "github.com/google/uuid"

// Named is the identity shared by every target thing.
type Named struct {
	ID        uuid.UUID
	Name      string
	ShortName string
}

// Ident returns the identity of the thing.
func (n *Named) Ident() *Named { return n }

// identified is satisfied by every type embedding Named.
type identified interface {
	Ident() *Named
}

// shortNameIndex maps short names to items of one owned collection. It is
// rebuilt lazily whenever the collection length no longer matches, so direct
// appends to the exported slices stay visible. The first item wins on
// duplicated short names.
type shortNameIndex[T identified] struct {
	byName map[string]T
	size   int
}

func (x *shortNameIndex[T]) lookup(items []T, shortName string) (T, bool) {
	if x.byName == nil || x.size != len(items) {
		x.byName = make(map[string]T, len(items))
		for _, it := range items {
			if _, exists := x.byName[it.Ident().ShortName]; !exists {
				x.byName[it.Ident().ShortName] = it
			}
		}

		x.size = len(items)
	}

	it, ok := x.byName[shortName]

	return it, ok
}

func findByID[T identified](items []T, id uuid.UUID) (T, bool) {
	for _, it := range items {
		if it.Ident().ID == id {
			return it, true
		}
	}

	var zero T

	return zero, false
}

// DomainOfExpertise owns parameters and elements.
type DomainOfExpertise struct {
	Named
}

// Option is a named alternative scenario.
type Option struct {
	Named
}

// ActualState is one state of an ActualFiniteStateList.
type ActualState struct {
	Named
}

// ActualFiniteStateList is the finite list of states a parameter may depend on.
type ActualFiniteStateList struct {
	Named
	States []*ActualState
}

// State returns the state with the given short name.
func (l *ActualFiniteStateList) State(shortName string) (*ActualState, bool) {
	for _, s := range l.States {
		if s.ShortName == shortName {
			return s, true
		}
	}

	return nil, false
}

// NewNamed returns an identity with a fresh random id.
func NewNamed(name, shortName string) Named {
	return Named{ID: uuid.New(), Name: name, ShortName: shortName}
}
