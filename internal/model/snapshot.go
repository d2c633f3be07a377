package model

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Snapshot is the YAML form of an Iteration. References between things are
// written as short names (reference data) or ids (elements).
type Snapshot struct {
	ID               uuid.UUID            `yaml:"id"`
	Domains          []NamedSnapshot      `yaml:"domains,omitempty"`
	Options          []NamedSnapshot      `yaml:"options,omitempty"`
	FiniteStateLists []StateListSnapshot  `yaml:"finite_state_lists,omitempty"`
	ParameterTypes   []TypeSnapshot       `yaml:"parameter_types,omitempty"`
	Definitions      []DefinitionSnapshot `yaml:"definitions,omitempty"`
	TopElement       string               `yaml:"top_element,omitempty"`
}

// NamedSnapshot is the YAML form of a Named thing.
type NamedSnapshot struct {
	ID        uuid.UUID `yaml:"id"`
	Name      string    `yaml:"name"`
	ShortName string    `yaml:"short_name"`
}

// StateListSnapshot is the YAML form of an ActualFiniteStateList.
type StateListSnapshot struct {
	NamedSnapshot `yaml:",inline"`
	States        []NamedSnapshot `yaml:"states"`
}

// TypeSnapshot is the YAML form of a ParameterType.
type TypeSnapshot struct {
	NamedSnapshot `yaml:",inline"`
	Class         Class    `yaml:"class"`
	Components    int      `yaml:"components"`
	Literals      []string `yaml:"literals,omitempty"`
}

// DefinitionSnapshot is the YAML form of an ElementDefinition.
type DefinitionSnapshot struct {
	NamedSnapshot `yaml:",inline"`
	Owner         string              `yaml:"owner,omitempty"`
	Parameters    []ParameterSnapshot `yaml:"parameters,omitempty"`
	Usages        []UsageSnapshot     `yaml:"usages,omitempty"`
}

// ParameterSnapshot is the YAML form of a Parameter.
type ParameterSnapshot struct {
	ID              uuid.UUID          `yaml:"id"`
	Type            string             `yaml:"type"`
	Owner           string             `yaml:"owner,omitempty"`
	OptionDependent bool               `yaml:"option_dependent,omitempty"`
	StateList       string             `yaml:"state_list,omitempty"`
	ValueSets       []ValueSetSnapshot `yaml:"value_sets"`
}

// UsageSnapshot is the YAML form of an ElementUsage.
type UsageSnapshot struct {
	NamedSnapshot `yaml:",inline"`
	Owner         string             `yaml:"owner,omitempty"`
	Definition    uuid.UUID          `yaml:"definition"`
	Overrides     []OverrideSnapshot `yaml:"overrides,omitempty"`
}

// OverrideSnapshot is the YAML form of a ParameterOverride.
type OverrideSnapshot struct {
	ID        uuid.UUID          `yaml:"id"`
	Parameter string             `yaml:"parameter"`
	Owner     string             `yaml:"owner,omitempty"`
	ValueSets []ValueSetSnapshot `yaml:"value_sets"`
}

// ValueSetSnapshot is the YAML form of a ValueSet.
type ValueSetSnapshot struct {
	ID        uuid.UUID `yaml:"id"`
	Option    string    `yaml:"option,omitempty"`
	State     string    `yaml:"state,omitempty"`
	Switch    ValueKind `yaml:"switch"`
	Manual    []string  `yaml:"manual,flow"`
	Computed  []string  `yaml:"computed,flow"`
	Reference []string  `yaml:"reference,flow"`
	Formula   []string  `yaml:"formula,flow"`
	Published []string  `yaml:"published,flow"`
}

// LoadIterationFile reads an iteration snapshot from a YAML file.
func LoadIterationFile(path string) (*Iteration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read iteration file %s: %w", path, err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse iteration YAML: %w", err)
	}

	return FromSnapshot(&snap)
}

// WriteIterationFile writes an iteration snapshot to a YAML file.
func WriteIterationFile(it *Iteration, path string) error {
	data, err := yaml.Marshal(ToSnapshot(it))
	if err != nil {
		return fmt.Errorf("failed to marshal iteration: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write iteration file %s: %w", path, err)
	}

	return nil
}

func named(n Named) NamedSnapshot {
	return NamedSnapshot{ID: n.ID, Name: n.Name, ShortName: n.ShortName}
}

func (s NamedSnapshot) named() Named {
	id := s.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return Named{ID: id, Name: s.Name, ShortName: s.ShortName}
}

func shortNameOf[T identified](v T, present bool) string {
	if !present {
		return ""
	}

	return v.Ident().ShortName
}

// ToSnapshot converts an iteration into its YAML form.
func ToSnapshot(it *Iteration) *Snapshot {
	snap := &Snapshot{ID: it.ID}

	for _, d := range it.Domains {
		snap.Domains = append(snap.Domains, named(d.Named))
	}

	for _, o := range it.Options {
		snap.Options = append(snap.Options, named(o.Named))
	}

	for _, l := range it.FiniteStateLists {
		ls := StateListSnapshot{NamedSnapshot: named(l.Named)}
		for _, s := range l.States {
			ls.States = append(ls.States, named(s.Named))
		}

		snap.FiniteStateLists = append(snap.FiniteStateLists, ls)
	}

	for _, pt := range it.ParameterTypes {
		snap.ParameterTypes = append(snap.ParameterTypes, TypeSnapshot{
			NamedSnapshot: named(pt.Named),
			Class:         pt.Class,
			Components:    pt.Components,
			Literals:      pt.Literals,
		})
	}

	for _, d := range it.Definitions {
		ds := DefinitionSnapshot{NamedSnapshot: named(d.Named), Owner: shortNameOf(d.Owner, d.Owner != nil)}

		for _, p := range d.Parameters {
			ds.Parameters = append(ds.Parameters, ParameterSnapshot{
				ID:              p.ID,
				Type:            p.Type.ShortName,
				Owner:           shortNameOf(p.Owner, p.Owner != nil),
				OptionDependent: p.IsOptionDependent,
				StateList:       shortNameOf(p.StateDependence, p.StateDependence != nil),
				ValueSets:       valueSetSnapshots(p.ValueSets),
			})
		}

		for _, u := range d.ContainedElements {
			us := UsageSnapshot{
				NamedSnapshot: named(u.Named),
				Owner:         shortNameOf(u.Owner, u.Owner != nil),
				Definition:    u.ElementDefinition.ID,
			}

			for _, o := range u.ParameterOverrides {
				us.Overrides = append(us.Overrides, OverrideSnapshot{
					ID:        o.ID,
					Parameter: o.Parameter.Type.ShortName,
					Owner:     shortNameOf(o.Owner, o.Owner != nil),
					ValueSets: valueSetSnapshots(o.ValueSets),
				})
			}

			ds.Usages = append(ds.Usages, us)
		}

		snap.Definitions = append(snap.Definitions, ds)
	}

	if it.TopElement != nil {
		snap.TopElement = it.TopElement.ShortName
	}

	return snap
}

func valueSetSnapshots(sets []*ValueSet) []ValueSetSnapshot {
	result := make([]ValueSetSnapshot, 0, len(sets))
	for _, vs := range sets {
		result = append(result, ValueSetSnapshot{
			ID:        vs.ID,
			Option:    shortNameOf(vs.ActualOption, vs.ActualOption != nil),
			State:     shortNameOf(vs.ActualState, vs.ActualState != nil),
			Switch:    vs.Switch,
			Manual:    vs.Manual,
			Computed:  vs.Computed,
			Reference: vs.Reference,
			Formula:   vs.Formula,
			Published: vs.Published,
		})
	}

	return result
}

// FromSnapshot rebuilds an iteration from its YAML form, resolving every
// short name and id reference.
func FromSnapshot(snap *Snapshot) (*Iteration, error) {
	it := &Iteration{ID: snap.ID}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}

	for _, d := range snap.Domains {
		it.Domains = append(it.Domains, &DomainOfExpertise{Named: d.named()})
	}

	for _, o := range snap.Options {
		it.Options = append(it.Options, &Option{Named: o.named()})
	}

	for _, ls := range snap.FiniteStateLists {
		l := &ActualFiniteStateList{Named: ls.named()}
		for _, s := range ls.States {
			l.States = append(l.States, &ActualState{Named: s.named()})
		}

		it.FiniteStateLists = append(it.FiniteStateLists, l)
	}

	for _, ts := range snap.ParameterTypes {
		it.ParameterTypes = append(it.ParameterTypes, &ParameterType{
			Named:      ts.named(),
			Class:      ts.Class,
			Components: ts.Components,
			Literals:   ts.Literals,
		})
	}

	r := resolver{it: it}

	defs := make(map[uuid.UUID]*ElementDefinition, len(snap.Definitions))

	// First pass creates definitions and parameters so usages can reference
	// definitions declared later in the file.
	for _, ds := range snap.Definitions {
		d := &ElementDefinition{Named: ds.named(), Owner: r.domain(ds.Owner)}

		for _, ps := range ds.Parameters {
			pt, ok := it.ParameterType(ps.Type)
			if !ok {
				return nil, fmt.Errorf("definition %s: parameter type %q: %w", ds.ShortName, ps.Type, ErrNotFound)
			}

			p := &Parameter{
				ID:                ps.ID,
				Type:              pt,
				Owner:             r.domain(ps.Owner),
				IsOptionDependent: ps.OptionDependent,
			}

			if ps.StateList != "" {
				l, ok := it.FiniteStateList(ps.StateList)
				if !ok {
					return nil, fmt.Errorf("parameter %s: state list %q: %w", ps.Type, ps.StateList, ErrNotFound)
				}

				p.StateDependence = l
			}

			sets, err := r.valueSets(ps.ValueSets)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", ps.Type, err)
			}

			p.ValueSets = sets
			d.AddParameter(p)
		}

		defs[d.ID] = d
		it.Definitions = append(it.Definitions, d)
	}

	for i, ds := range snap.Definitions {
		d := it.Definitions[i]

		for _, us := range ds.Usages {
			target, ok := defs[us.Definition]
			if !ok {
				return nil, fmt.Errorf("usage %s: definition %s: %w", us.ShortName, us.Definition, ErrNotFound)
			}

			u := &ElementUsage{Named: us.named(), Owner: r.domain(us.Owner), ElementDefinition: target}

			for _, ovs := range us.Overrides {
				p, ok := target.Parameter(ovs.Parameter)
				if !ok {
					return nil, fmt.Errorf("usage %s: overridden parameter %q: %w", us.ShortName, ovs.Parameter, ErrNotFound)
				}

				sets, err := r.valueSets(ovs.ValueSets)
				if err != nil {
					return nil, fmt.Errorf("override %s: %w", ovs.Parameter, err)
				}

				u.AddOverride(&ParameterOverride{ID: ovs.ID, Parameter: p, Owner: r.domain(ovs.Owner), ValueSets: sets})
			}

			d.AddContainedElement(u)
		}
	}

	if snap.TopElement != "" {
		top, ok := it.Definition(snap.TopElement)
		if !ok {
			return nil, fmt.Errorf("top element %q: %w", snap.TopElement, ErrNotFound)
		}

		it.TopElement = top
	} else if len(it.Definitions) > 0 {
		it.TopElement = it.Definitions[0]
	}

	return it, nil
}

type resolver struct {
	it *Iteration
}

func (r resolver) domain(shortName string) *DomainOfExpertise {
	d, _ := r.it.Domain(shortName)
	return d
}

func (r resolver) valueSets(snaps []ValueSetSnapshot) ([]*ValueSet, error) {
	result := make([]*ValueSet, 0, len(snaps))

	for _, s := range snaps {
		vs := &ValueSet{
			ID:        s.ID,
			Switch:    s.Switch,
			Manual:    s.Manual,
			Computed:  s.Computed,
			Reference: s.Reference,
			Formula:   s.Formula,
			Published: s.Published,
		}

		if s.Option != "" {
			o, ok := r.it.Option(s.Option)
			if !ok {
				return nil, fmt.Errorf("option %q: %w", s.Option, ErrNotFound)
			}

			vs.ActualOption = o
		}

		if s.State != "" {
			st, ok := r.it.State(s.State)
			if !ok {
				return nil, fmt.Errorf("state %q: %w", s.State, ErrNotFound)
			}

			vs.ActualState = st
		}

		result = append(result, vs)
	}

	return result, nil
}
