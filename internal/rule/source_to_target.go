package rule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-sync/internal/correspondence"
	"product-sync/internal/diagnostic"
	"product-sync/internal/mapping"
	"product-sync/internal/match"
	"product-sync/internal/metrics"
	"product-sync/internal/model"
	"product-sync/internal/product"
	"product-sync/internal/registry"
	"product-sync/internal/valueset"
)

// SourceToTarget maps a source product tree onto the target iteration.
type SourceToTarget struct {
	cfg    Config
	logger *zap.Logger

	// Per run state.
	produced map[string]*model.ElementDefinition
	output   []MappedElement
	recorded int
	diags    *diagnostic.Diagnostics
}

// NewSourceToTarget creates the rule. Iteration, Store and Registry are
// required.
func NewSourceToTarget(cfg Config) *SourceToTarget {
	cfg.defaults()

	return &SourceToTarget{
		cfg:    cfg,
		logger: cfg.Logger.Named("source_to_target"),
		diags:  &diagnostic.Diagnostics{},
	}
}

// Diagnostics returns the soft failures of the last run.
func (r *SourceToTarget) Diagnostics() *diagnostic.Diagnostics {
	return r.diags
}

// Map walks the tree rooted at root and returns every (node, element) pair
// it produced, in walk order. Identifiers must have been assigned.
func (r *SourceToTarget) Map(ctx context.Context, root *product.Node) ([]MappedElement, error) {
	if root == nil {
		return nil, product.ErrNilNode
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.produced = make(map[string]*model.ElementDefinition)
	r.output = nil
	r.recorded = 0
	r.diags = &diagnostic.Diagnostics{}

	r.honorDesignations()

	if err := r.walk(root, nil); err != nil {
		return nil, err
	}

	if err := r.storeDesignations(); err != nil {
		return nil, err
	}

	r.logger.Info("source tree mapped",
		zap.String("root", root.Identifier),
		zap.Int("elements", len(r.output)),
		zap.Int("warnings", len(r.diags.Warnings)))

	return r.output, nil
}

func (r *SourceToTarget) walk(n, parent *product.Node) error {
	var parentDef *model.ElementDefinition
	if parent != nil {
		parentDef = parent.Element.Definition()
	}

	if n.IsDefinitionBoundary() {
		return r.mapBoundary(n, parentDef)
	}

	def := r.resolveDefinition(n)
	n.Element = def
	r.emit(n, def)

	sel, explicit := selectionFor(&r.cfg, n, r.diags)
	if err := r.recordSelection(n, explicit); err != nil {
		return err
	}

	b := valueset.NewBuilder(r.logger, r.cfg.Iteration.Options, sel)
	if err := r.mapDefinitionParameters(b, def, n); err != nil {
		return err
	}

	if parentDef != nil {
		usage := r.resolveUsage(parentDef, n, def)
		n.Element = usage
		r.emit(n, usage)

		if err := r.mapUsageParameters(b, usage, n, n.Shape); err != nil {
			return err
		}
	}

	for _, pair := range r.pending() {
		if err := r.record(pair); err != nil {
			return err
		}
	}

	for _, c := range n.ElementChildren() {
		if err := r.walk(c, n); err != nil {
			return err
		}
	}

	return nil
}

// mapBoundary maps a component wrapping a single definition-kind node to a
// usage over that node's definition, then walks the node's own children.
func (r *SourceToTarget) mapBoundary(n *product.Node, parentDef *model.ElementDefinition) error {
	if parentDef == nil {
		return fmt.Errorf("map %s: %w: a component wrapping a single part cannot be the tree root, wrap it in an assembly",
			n.Identifier, ErrNoParentDefinition)
	}

	child := n.ElementChildren()[0]

	def := r.resolveDefinition(child)
	usage := r.resolveUsage(parentDef, n, def)

	child.Element = def
	n.Element = usage

	r.emit(n, def)
	r.emit(n, usage)
	r.emit(child, def)

	sel, explicit := selectionFor(&r.cfg, child, r.diags)
	if err := r.recordSelection(n, explicit); err != nil {
		return err
	}

	if err := r.recordSelection(child, explicit); err != nil {
		return err
	}

	b := valueset.NewBuilder(r.logger, r.cfg.Iteration.Options, sel)
	if err := r.mapDefinitionParameters(b, def, child); err != nil {
		return err
	}

	placement := n.Shape
	if placement == nil {
		placement = child.Shape
	}

	if err := r.mapUsageParameters(b, usage, n, placement); err != nil {
		return err
	}

	for _, pair := range r.pending() {
		if err := r.record(pair); err != nil {
			return err
		}
	}

	for _, c := range child.ElementChildren() {
		if err := r.walk(c, child); err != nil {
			return err
		}
	}

	return nil
}

// resolveDefinition finds the definition named after n in this run's
// output, then in the iteration, and creates it otherwise.
func (r *SourceToTarget) resolveDefinition(n *product.Node) *model.ElementDefinition {
	sn := match.ShortName(n.Name)

	if def, ok := r.produced[sn]; ok {
		r.cfg.Recorder.RecordElement(DirectionPush, elementDefinition, metrics.ActionReused)
		return def
	}

	def, ok := r.cfg.Iteration.Definition(sn)
	if ok {
		r.cfg.Recorder.RecordElement(DirectionPush, elementDefinition, metrics.ActionReused)
	} else {
		def = model.NewElementDefinition(n.Name, sn, r.cfg.Domain)
		r.cfg.Iteration.AddDefinition(def)
		r.cfg.Recorder.RecordElement(DirectionPush, elementDefinition, metrics.ActionCreated)

		r.logger.Debug("definition created", zap.String("node", n.Identifier), zap.String("short_name", sn))
	}

	r.produced[sn] = def

	return def
}

// resolveUsage finds the usage named after n among the contained elements
// of parentDef and creates it otherwise.
func (r *SourceToTarget) resolveUsage(parentDef *model.ElementDefinition, n *product.Node, def *model.ElementDefinition) *model.ElementUsage {
	sn := match.ShortName(n.Name)

	if u, ok := parentDef.ContainedElement(sn); ok {
		r.cfg.Recorder.RecordElement(DirectionPush, elementUsage, metrics.ActionReused)
		return u
	}

	u := model.NewElementUsage(n.Name, sn, r.cfg.Domain, def)
	parentDef.AddContainedElement(u)
	r.cfg.Recorder.RecordElement(DirectionPush, elementUsage, metrics.ActionCreated)

	r.logger.Debug("usage created",
		zap.String("node", n.Identifier),
		zap.String("short_name", sn),
		zap.String("parent", parentDef.ShortName))

	return u
}

// emit appends a pair to the output.
func (r *SourceToTarget) emit(n *product.Node, el model.Element) {
	r.output = append(r.output, MappedElement{Node: n, Element: el})
}

// pending returns the pairs emitted since the last call.
func (r *SourceToTarget) pending() []MappedElement {
	result := r.output[r.recorded:]
	r.recorded = len(r.output)

	return result
}

// record upserts the correspondence of one emitted pair.
func (r *SourceToTarget) record(pair MappedElement) error {
	_, _, err := r.cfg.Store.Upsert(pair.Element.Ident().ID, pair.Node.Identifier, correspondence.DirectionSourceToTarget)
	if err != nil {
		return fmt.Errorf("map %s: %w", pair.Node.Identifier, err)
	}

	return nil
}

// recordSelection stores the option and state n carries under its
// identifier, replacing the one stored by an earlier run. A selection the
// node does not carry leaves the stored one in place.
func (r *SourceToTarget) recordSelection(n *product.Node, sel valueset.Selection) error {
	it := r.cfg.Iteration

	for _, c := range r.cfg.Store.FindByIdentifier(n.Identifier, correspondence.DirectionSourceToTarget) {
		if o, ok := it.OptionByID(c.InternalID); ok && sel.Option != nil && o.ID != sel.Option.ID {
			r.cfg.Store.Remove(c.RecordID)
		}

		if s, ok := it.StateByID(c.InternalID); ok && sel.State != nil && s.ID != sel.State.ID {
			r.cfg.Store.Remove(c.RecordID)
		}
	}

	var ids []uuid.UUID
	if sel.Option != nil {
		ids = append(ids, sel.Option.ID)
	}

	if sel.State != nil {
		ids = append(ids, sel.State.ID)
	}

	for _, id := range ids {
		if _, _, err := r.cfg.Store.Upsert(id, n.Identifier, correspondence.DirectionSourceToTarget); err != nil {
			return fmt.Errorf("map %s: %w", n.Identifier, err)
		}
	}

	return nil
}

// honorDesignations pins material and color to the parameter types stored
// by an earlier session.
func (r *SourceToTarget) honorDesignations() {
	for reserved, kind := range designations {
		id, ok := r.cfg.Store.Designation(reserved)
		if !ok {
			continue
		}

		if err := r.cfg.Registry.Pin(kind, id); err != nil {
			r.logger.Warn("stored designation ignored", zap.String("kind", string(kind)), zap.Error(err))
			r.diags.AddWarning(diagnostic.CodeParameterTypeMissing, "stored designation ignored: "+err.Error(), "", string(kind))
		}
	}
}

// storeDesignations records the parameter types used for material and
// color under their reserved identifiers.
func (r *SourceToTarget) storeDesignations() error {
	for reserved, kind := range designations {
		res, err := r.cfg.Registry.Resolve(kind)
		if err != nil {
			continue
		}

		if err := r.cfg.Store.SetDesignation(reserved, res.Type.ID); err != nil {
			return fmt.Errorf("store %s designation: %w", kind, err)
		}
	}

	return nil
}

var designations = map[string]registry.Kind{
	mapping.MaterialDesignation: registry.KindMaterial,
	mapping.ColorDesignation:    registry.KindColor,
}
