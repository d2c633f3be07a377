package rule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-sync/internal/correspondence"
	"product-sync/internal/diagnostic"
	"product-sync/internal/mapping"
	"product-sync/internal/metrics"
	"product-sync/internal/model"
	"product-sync/internal/product"
	"product-sync/internal/registry"
)

// Orphan reasons.
const (
	OrphanNodeGone    = "node_gone"
	OrphanElementGone = "element_gone"
)

// ErrNilElement is returned for a transfer request without an element.
var ErrNilElement = errors.New("transfer request without element")

// Request asks for one target element to be transferred to the source
// tree.
type Request struct {
	Element model.Element
	// Parent is the node a new node is created under; nil means the tree
	// root.
	Parent *product.Node
}

// Orphan is a correspondence whose node or element no longer exists.
type Orphan struct {
	RecordID   uuid.UUID
	Identifier string
	InternalID uuid.UUID
	Reason     string
}

// Result is the outcome of a reverse mapping run.
type Result struct {
	Placeholders []product.Placeholder
	Orphans      []Orphan
}

// TargetToSource plans the source nodes that represent target elements.
// An element that corresponds to a node still present in the tree is
// transferred onto that node; otherwise a node is created under the
// requested parent.
type TargetToSource struct {
	cfg    Config
	prune  bool
	logger *zap.Logger
	diags  *diagnostic.Diagnostics
}

// NewTargetToSource creates the rule. With prune set, orphaned
// correspondences are removed from the store.
func NewTargetToSource(cfg Config, prune bool) *TargetToSource {
	cfg.defaults()

	return &TargetToSource{
		cfg:    cfg,
		prune:  prune,
		logger: cfg.Logger.Named("target_to_source"),
		diags:  &diagnostic.Diagnostics{},
	}
}

// Diagnostics returns the findings of the last run.
func (r *TargetToSource) Diagnostics() *diagnostic.Diagnostics {
	return r.diags
}

// Map detects orphaned correspondences against tree, then plans one
// placeholder per request. tree may be nil when the source is empty.
func (r *TargetToSource) Map(ctx context.Context, requests []Request, tree *product.Node) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.diags = &diagnostic.Diagnostics{}

	nodes := product.Index(tree)
	result := &Result{Orphans: r.orphans(nodes, tree != nil)}

	if r.prune {
		for _, o := range result.Orphans {
			r.cfg.Store.Remove(o.RecordID)
		}
	}

	r.cfg.Recorder.RecordOrphans(len(result.Orphans))

	planned := make(map[string]struct{}, len(requests))

	for i, req := range requests {
		if req.Element == nil {
			return nil, fmt.Errorf("request %d: %w", i, ErrNilElement)
		}

		ph := r.plan(req, tree, nodes)

		if _, dup := planned[ph.Identifier]; dup {
			r.logger.Debug("duplicate transfer request", zap.String("identifier", ph.Identifier))
			continue
		}

		planned[ph.Identifier] = struct{}{}

		_, _, err := r.cfg.Store.Upsert(req.Element.Ident().ID, ph.Identifier, correspondence.DirectionTargetToSource)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: %w", req.Element.Ident().ShortName, err)
		}

		action := metrics.ActionCreated
		if ph.Action == product.ActionUpdate {
			action = metrics.ActionReused
		}

		r.cfg.Recorder.RecordElement(DirectionPull, elementPlaceholder, action)

		result.Placeholders = append(result.Placeholders, ph)
	}

	r.logger.Info("target elements planned",
		zap.Int("placeholders", len(result.Placeholders)),
		zap.Int("orphans", len(result.Orphans)),
		zap.Bool("pruned", r.prune))

	return result, nil
}

// orphans lists the correspondences whose node or element is gone.
// Designations are never orphaned; records of options, states and
// parameter types only follow their node.
func (r *TargetToSource) orphans(nodes map[string]*product.Node, checkNodes bool) []Orphan {
	var result []Orphan

	for _, dir := range []correspondence.Direction{correspondence.DirectionSourceToTarget, correspondence.DirectionTargetToSource} {
		for _, c := range r.cfg.Store.AllForDirection(dir) {
			token := c.External.Token()
			if token == mapping.MaterialDesignation || token == mapping.ColorDesignation {
				continue
			}

			reason := ""

			if _, ok := nodes[token]; checkNodes && !ok {
				reason = OrphanNodeGone
			} else if !isReferenceThing(r.cfg.Iteration, c.InternalID) {
				if _, ok := r.cfg.Iteration.Element(c.InternalID); !ok {
					reason = OrphanElementGone
				}
			}

			if reason == "" {
				continue
			}

			code := diagnostic.CodeOrphanedNode
			if reason == OrphanElementGone {
				code = diagnostic.CodeOrphanedElement
			}

			r.diags.AddWarning(code, fmt.Sprintf("correspondence %s is orphaned", c.RecordID), token, "")
			r.logger.Warn("orphaned correspondence",
				zap.Stringer("record", c.RecordID),
				zap.String("identifier", token),
				zap.String("reason", reason))

			result = append(result, Orphan{
				RecordID:   c.RecordID,
				Identifier: token,
				InternalID: c.InternalID,
				Reason:     reason,
			})
		}
	}

	return result
}

// plan builds the placeholder of one request.
func (r *TargetToSource) plan(req Request, tree *product.Node, nodes map[string]*product.Node) product.Placeholder {
	el := req.Element

	ph := product.Placeholder{
		Action: product.ActionCreate,
		Name:   el.Ident().Name,
		Kind:   kindOf(el),
	}

	r.fillValues(&ph, el.Definition())

	if n, ok := r.knownNode(el, nodes); ok {
		ph.Action = product.ActionUpdate
		ph.Identifier = n.Identifier

		if n.Parent != nil {
			ph.ParentIdentifier = n.Parent.Identifier
		}

		return ph
	}

	parent := req.Parent
	if parent == nil {
		parent = tree
	}

	if parent == nil {
		ph.Identifier = ph.Name
		return ph
	}

	ph.ParentIdentifier = parent.Identifier
	ph.Identifier = parent.Identifier + product.IdentifierSeparator + ph.Name

	// A node already sits where the element would be created.
	if _, exists := nodes[ph.Identifier]; exists {
		ph.Action = product.ActionUpdate
	}

	return ph
}

// knownNode returns the node el was last transferred to or mapped from,
// when it is still in the tree. One element can correspond to several
// nodes, such as a component and the part it wraps; a node whose kind fits
// the element wins over the others.
func (r *TargetToSource) knownNode(el model.Element, nodes map[string]*product.Node) (*product.Node, bool) {
	var candidates []*product.Node

	for _, dir := range []correspondence.Direction{correspondence.DirectionTargetToSource, correspondence.DirectionSourceToTarget} {
		for _, identifier := range r.cfg.Store.IdentifiersOf(el.Ident().ID, dir) {
			if n, ok := nodes[identifier]; ok {
				candidates = append(candidates, n)
			}
		}
	}

	if len(candidates) == 0 {
		return nil, false
	}

	for _, n := range candidates {
		if fitsElement(n, el) {
			return n, true
		}
	}

	return candidates[0], true
}

// fitsElement reports whether n has a kind that can represent el.
func fitsElement(n *product.Node, el model.Element) bool {
	switch el.(type) {
	case *model.ElementUsage:
		return n.Kind == product.KindComponent
	case *model.ElementDefinition:
		return n.Kind.IsDefinitionKind()
	default:
		return false
	}
}

// fillValues copies the physical values of def for the session selection.
func (r *TargetToSource) fillValues(ph *product.Placeholder, def *model.ElementDefinition) {
	if def == nil {
		return
	}

	if v := r.quantity(def, registry.KindMass, 1); v != nil {
		ph.Mass = &v[0]
	}

	if v := r.quantity(def, registry.KindVolume, 1); v != nil {
		ph.Volume = &v[0]
	}

	if v := r.quantity(def, registry.KindCenterOfGravity, 3); v != nil {
		ph.CenterOfGravity = &product.Vector3{v[0], v[1], v[2]}
	}

	if v := r.quantity(def, registry.KindMomentOfInertia, 9); v != nil {
		var m product.Matrix3

		copy(m[:], v)
		ph.MomentOfInertia = &m
	}
}

// quantity reads n values of the kind parameter of def, or nil.
func (r *TargetToSource) quantity(def *model.ElementDefinition, kind registry.Kind, n int) []float64 {
	res, err := r.cfg.Registry.Resolve(kind)
	if err != nil {
		return nil
	}

	p, ok := def.Parameter(res.Type.ShortName)
	if !ok {
		return nil
	}

	option, state := r.scope(p)

	values, err := p.QueryQuantity(option, state)
	if err != nil || len(values) != n {
		r.logger.Debug("value not transferred",
			zap.String("definition", def.ShortName),
			zap.String("parameter", res.Type.ShortName),
			zap.Error(err))

		return nil
	}

	return values
}

// scope returns the value set scope of p under the session selection.
func (r *TargetToSource) scope(p *model.Parameter) (*model.Option, *model.ActualState) {
	var (
		option *model.Option
		state  *model.ActualState
	)

	if p.IsOptionDependent {
		option = r.cfg.Selection.Option
	}

	if p.StateDependence != nil && r.cfg.Selection.State != nil {
		if s, ok := p.StateDependence.State(r.cfg.Selection.State.ShortName); ok {
			state = s
		}
	}

	return option, state
}

// kindOf returns the node kind representing el.
func kindOf(el model.Element) product.Kind {
	switch el := el.(type) {
	case *model.ElementUsage:
		return product.KindComponent
	case *model.ElementDefinition:
		if len(el.ContainedElements) > 0 {
			return product.KindAssembly
		}

		return product.KindPart
	default:
		return product.KindPart
	}
}
