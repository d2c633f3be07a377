package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"product-sync/internal/diagnostic"
	"product-sync/internal/match"
	"product-sync/internal/model"
)

// ErrParameterTypeNotFound is returned when a kind resolves to no parameter
// type of the iteration.
var ErrParameterTypeNotFound = errors.New("parameter type not found")

// maxSuggestions caps the "did you mean" list of a failed resolution.
const maxSuggestions = 3

// Binding ties a kind to a parameter type short name and the dependency of
// the parameters created for it.
type Binding struct {
	ShortName       string `yaml:"short_name"`
	OptionDependent bool   `yaml:"option_dependent,omitempty"`
	StateList       string `yaml:"state_list,omitempty"`
}

// Resolved is a kind resolved against an iteration.
type Resolved struct {
	Type            *model.ParameterType
	OptionDependent bool
	States          *model.ActualFiniteStateList
}

// Resolver resolves kinds to parameter types.
type Resolver interface {
	Resolve(kind Kind) (Resolved, error)
}

// NotFoundError describes a failed resolution.
type NotFoundError struct {
	Kind        Kind
	ShortName   string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.ShortName, ErrParameterTypeNotFound)
}

// Unwrap lets errors.Is match ErrParameterTypeNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrParameterTypeNotFound
}

// Registry resolves kinds against one iteration.
type Registry struct {
	iteration *model.Iteration
	bindings  map[Kind]Binding
	pinned    map[Kind]uuid.UUID
}

// New creates a registry over it. Kinds missing from bindings use
// DefaultShortNames.
func New(it *model.Iteration, bindings map[Kind]Binding) *Registry {
	r := &Registry{
		iteration: it,
		bindings:  make(map[Kind]Binding, len(DefaultShortNames)),
		pinned:    make(map[Kind]uuid.UUID),
	}

	for kind, sn := range DefaultShortNames {
		r.bindings[kind] = Binding{ShortName: sn}
	}

	for kind, b := range bindings {
		if b.ShortName == "" {
			b.ShortName = DefaultShortNames[kind]
		}

		r.bindings[kind] = b
	}

	return r
}

// Binding returns the binding of a kind.
func (r *Registry) Binding(kind Kind) (Binding, bool) {
	b, ok := r.bindings[kind]
	return b, ok
}

// Pin makes kind resolve to the parameter type with the given id, whatever
// its binding says. It fails when the iteration has no such type.
func (r *Registry) Pin(kind Kind, typeID uuid.UUID) error {
	if _, ok := r.iteration.ParameterTypeByID(typeID); !ok {
		return fmt.Errorf("pin %s to %s: %w", kind, typeID, ErrParameterTypeNotFound)
	}

	r.pinned[kind] = typeID

	return nil
}

// Resolve implements Resolver.
func (r *Registry) Resolve(kind Kind) (Resolved, error) {
	b, ok := r.bindings[kind]
	if !ok {
		return Resolved{}, fmt.Errorf("unknown parameter kind %q", kind)
	}

	var (
		pt    *model.ParameterType
		found bool
	)

	if id, isPinned := r.pinned[kind]; isPinned {
		pt, found = r.iteration.ParameterTypeByID(id)
	} else {
		pt, found = r.iteration.ParameterType(b.ShortName)
	}

	if !found {
		return Resolved{}, &NotFoundError{
			Kind:      kind,
			ShortName: b.ShortName,
			Suggestions: match.Suggest(b.ShortName, r.iteration.ParameterTypeShortNames(),
				maxSuggestions, match.DefaultSuggestionThreshold),
		}
	}

	res := Resolved{Type: pt, OptionDependent: b.OptionDependent}

	if b.StateList != "" {
		states, ok := r.iteration.FiniteStateList(b.StateList)
		if !ok {
			return Resolved{}, fmt.Errorf("%s: state list %q: %w", kind, b.StateList, model.ErrNotFound)
		}

		res.States = states
	}

	return res, nil
}

// Check resolves every kind and reports the failures.
func (r *Registry) Check() *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	for _, kind := range Kinds() {
		_, err := r.Resolve(kind)
		if err == nil {
			continue
		}

		var nf *NotFoundError
		if errors.As(err, &nf) {
			res.AddWarning(diagnostic.CodeParameterTypeMissing, err.Error(), "", nf.ShortName, nf.Suggestions...)
			continue
		}

		res.AddError(diagnostic.CodeParameterTypeMissing, err.Error(), "", string(kind))
	}

	return res
}
