package rule

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-sync/internal/correspondence"
	"product-sync/internal/diagnostic"
	"product-sync/internal/metrics"
	"product-sync/internal/model"
	"product-sync/internal/product"
	"product-sync/internal/registry"
	"product-sync/internal/valueset"
)

// Direction labels used in logs and metrics.
const (
	DirectionPush = "push"
	DirectionPull = "pull"
)

// Element labels used in metrics.
const (
	elementDefinition  = "definition"
	elementUsage       = "usage"
	elementPlaceholder = "placeholder"
)

// ErrNoParentDefinition is returned when a definition boundary has no
// parent definition to place its usage in.
var ErrNoParentDefinition = errors.New("definition boundary without parent definition")

// MappedElement pairs a source node with a target element it was mapped to.
type MappedElement struct {
	Node    *product.Node
	Element model.Element
}

// Registry resolves parameter kinds and honors stored designations.
type Registry interface {
	registry.Resolver
	Pin(kind registry.Kind, typeID uuid.UUID) error
}

// Config holds the collaborators shared by both mapping directions.
type Config struct {
	Iteration *model.Iteration
	Store     *correspondence.Store
	Registry  Registry
	// Domain owns created elements and parameters; may be nil.
	Domain *model.DomainOfExpertise
	// Selection is the session default, used for nodes without a selection
	// of their own.
	Selection valueset.Selection
	Logger    *zap.Logger
	Recorder  *metrics.Recorder
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.Recorder == nil {
		c.Recorder = metrics.NewRecorder("")
	}
}

// selectionFor returns the effective selection of a node and the part of
// it the node carries itself. The node's own or nearest ancestor's
// selection wins, then the session default, then the selection stored for
// the node by an earlier run.
func selectionFor(cfg *Config, n *product.Node, diags *diagnostic.Diagnostics) (effective, explicit valueset.Selection) {
	effective, _ = restoredSelection(cfg, n.Identifier)

	if cfg.Selection.Option != nil {
		effective.Option = cfg.Selection.Option
	}

	if cfg.Selection.State != nil {
		effective.State = cfg.Selection.State
	}

	if sn := n.EffectiveOption(); sn != "" {
		if o, ok := cfg.Iteration.Option(sn); ok {
			explicit.Option = o
			effective.Option = o
		} else {
			diags.AddWarning(diagnostic.CodeNoActiveSelection, "unknown option "+sn, n.Identifier, "")
		}
	}

	if sn := n.EffectiveState(); sn != "" {
		if s, ok := cfg.Iteration.State(sn); ok {
			explicit.State = s
			effective.State = s
		} else {
			diags.AddWarning(diagnostic.CodeNoActiveSelection, "unknown state "+sn, n.Identifier, "")
		}
	}

	return effective, explicit
}

// restoredSelection reads the option and state recorded for identifier.
func restoredSelection(cfg *Config, identifier string) (valueset.Selection, bool) {
	var (
		sel   valueset.Selection
		found bool
	)

	for _, c := range cfg.Store.FindByIdentifier(identifier, correspondence.DirectionSourceToTarget) {
		if o, ok := cfg.Iteration.OptionByID(c.InternalID); ok {
			sel.Option = o
			found = true
		}

		if s, ok := cfg.Iteration.StateByID(c.InternalID); ok {
			sel.State = s
			found = true
		}
	}

	return sel, found
}

// isReferenceThing reports whether id belongs to an option, a state or a
// parameter type rather than to an element.
func isReferenceThing(it *model.Iteration, id uuid.UUID) bool {
	if _, ok := it.OptionByID(id); ok {
		return true
	}

	if _, ok := it.StateByID(id); ok {
		return true
	}

	_, ok := it.ParameterTypeByID(id)

	return ok
}
