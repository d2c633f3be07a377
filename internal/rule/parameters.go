package rule

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-sync/internal/diagnostic"
	"product-sync/internal/model"
	"product-sync/internal/product"
	"product-sync/internal/registry"
	"product-sync/internal/valueset"
)

// mapDefinitionParameters writes the physical, shape and material/color
// parameters of n onto def.
func (r *SourceToTarget) mapDefinitionParameters(b *valueset.Builder, def *model.ElementDefinition, n *product.Node) error {
	values := []struct {
		kind registry.Kind
		raw  []any
	}{
		{registry.KindMass, scalar(n.Mass)},
		{registry.KindVolume, scalar(n.Volume)},
		{registry.KindCenterOfGravity, vector(n.CenterOfGravity)},
		{registry.KindMomentOfInertia, matrix(n.MomentOfInertia)},
	}

	for _, v := range values {
		if err := r.setParameter(b, def, n, v.kind, v.raw); err != nil {
			return err
		}
	}

	if err := r.mapShape(b, def, n); err != nil {
		return err
	}

	material, color := geometryPairs(n)

	if err := r.setParameter(b, def, n, registry.KindMaterial, material); err != nil {
		return err
	}

	return r.setParameter(b, def, n, registry.KindColor, color)
}

func (r *SourceToTarget) mapShape(b *valueset.Builder, def *model.ElementDefinition, n *product.Node) error {
	s := n.Shape
	if s == nil || !n.Kind.IsDefinitionKind() || s.Kind == "" {
		return nil
	}

	if !s.Kind.Supported() {
		r.logger.Warn("unsupported shape", zap.String("node", n.Identifier), zap.String("shape", string(s.Kind)))
		r.diags.AddWarning(diagnostic.CodeUnsupportedShape, "unsupported shape "+string(s.Kind), n.Identifier, "")
		r.cfg.Recorder.RecordSkip(diagnostic.CodeUnsupportedShape)

		return nil
	}

	values := []struct {
		kind registry.Kind
		raw  []any
	}{
		{registry.KindShapeKind, []any{string(s.Kind)}},
		{registry.KindShapeLength, scalar(s.Length)},
		{registry.KindShapeWidthOrDiameter, scalar(s.WidthOrDiameter)},
		{registry.KindShapeHeight, scalar(s.Height)},
		{registry.KindShapeAngle, scalar(s.Angle)},
		{registry.KindShapeSupportAngle, scalar(s.SupportAngle)},
		{registry.KindShapeThickness, scalar(s.Thickness)},
		{registry.KindShapeArea, scalar(s.Area)},
		{registry.KindShapeDensity, scalar(s.Density)},
		{registry.KindShapeMassMargin, scalar(s.MassMargin)},
	}

	for _, v := range values {
		if err := r.setParameter(b, def, n, v.kind, v.raw); err != nil {
			return err
		}
	}

	return nil
}

// mapUsageParameters writes the placement of n as overrides on usage.
func (r *SourceToTarget) mapUsageParameters(b *valueset.Builder, usage *model.ElementUsage, n *product.Node, placement *product.Shape) error {
	if placement == nil {
		placement = &product.Shape{}
	}

	values := []struct {
		kind registry.Kind
		raw  []any
	}{
		{registry.KindPosition, vector(placement.Position)},
		{registry.KindOrientation, matrix(placement.Orientation)},
		{registry.KindRelativePosition, vector(placement.RelativePosition)},
		{registry.KindRelativeOrientation, matrix(placement.RelativeOrientation)},
	}

	for _, v := range values {
		if err := r.setOverride(b, usage, n, v.kind, v.raw); err != nil {
			return err
		}
	}

	return nil
}

// setParameter creates or updates the parameter of kind on def. Absent
// values leave the parameter untouched.
func (r *SourceToTarget) setParameter(b *valueset.Builder, def *model.ElementDefinition, n *product.Node, kind registry.Kind, raw []any) error {
	res, ok := r.resolve(n, kind, raw)
	if !ok {
		return nil
	}

	if p, exists := def.Parameter(res.Type.ShortName); exists {
		return r.update(b, p, n, kind, raw)
	}

	def.AddParameter(r.newParameter(b, res, raw))

	return nil
}

// setOverride creates or updates the override of kind on usage, creating
// the overridden parameter on the usage's definition first when missing.
func (r *SourceToTarget) setOverride(b *valueset.Builder, usage *model.ElementUsage, n *product.Node, kind registry.Kind, raw []any) error {
	res, ok := r.resolve(n, kind, raw)
	if !ok {
		return nil
	}

	if o, exists := usage.Override(res.Type.ShortName); exists {
		return r.update(b, o, n, kind, raw)
	}

	def := usage.Definition()

	p, exists := def.Parameter(res.Type.ShortName)
	if !exists {
		p = r.newParameter(b, res, raw)
		def.AddParameter(p)
	}

	usage.AddOverride(&model.ParameterOverride{
		ID:        uuid.New(),
		Parameter: p,
		Owner:     r.cfg.Domain,
		ValueSets: b.Mirror(p.ValueSets, raw...),
	})

	return nil
}

// resolve returns the parameter type for kind, or false when the value is
// absent or cannot be written. Every false outcome is reported.
func (r *SourceToTarget) resolve(n *product.Node, kind registry.Kind, raw []any) (registry.Resolved, bool) {
	if len(raw) == 0 {
		r.logger.Debug("value absent", zap.String("node", n.Identifier), zap.String("kind", string(kind)))
		r.diags.AddInfo(diagnostic.CodeValueAbsent, "no value", n.Identifier, string(kind))

		return registry.Resolved{}, false
	}

	res, err := r.cfg.Registry.Resolve(kind)
	if err != nil {
		var (
			nf          *registry.NotFoundError
			suggestions []string
		)

		if errors.As(err, &nf) {
			suggestions = nf.Suggestions
		}

		r.logger.Warn("parameter type missing", zap.String("node", n.Identifier), zap.Error(err))
		r.diags.AddWarning(diagnostic.CodeParameterTypeMissing, err.Error(), n.Identifier, string(kind), suggestions...)
		r.cfg.Recorder.RecordSkip(diagnostic.CodeParameterTypeMissing)

		return registry.Resolved{}, false
	}

	if res.Type.Components != model.DynamicArity && len(raw) != res.Type.Components {
		msg := fmt.Sprintf("%d values for %d components", len(raw), res.Type.Components)

		r.logger.Warn("arity mismatch",
			zap.String("node", n.Identifier),
			zap.String("parameter", res.Type.ShortName),
			zap.Int("values", len(raw)),
			zap.Int("components", res.Type.Components))
		r.diags.AddWarning(diagnostic.CodeArityMismatch, msg, n.Identifier, res.Type.ShortName)
		r.cfg.Recorder.RecordSkip(diagnostic.CodeArityMismatch)

		return registry.Resolved{}, false
	}

	return res, true
}

func (r *SourceToTarget) update(b *valueset.Builder, owner model.ValueSetOwner, n *product.Node, kind registry.Kind, raw []any) error {
	err := b.Update(owner, raw...)
	if errors.Is(err, valueset.ErrNoSelection) {
		r.diags.AddWarning(diagnostic.CodeNoActiveSelection, err.Error(), n.Identifier, owner.TypeShortName())
		r.cfg.Recorder.RecordSkip(diagnostic.CodeNoActiveSelection)

		return nil
	}

	if err != nil {
		return fmt.Errorf("map %s %s: %w", n.Identifier, kind, err)
	}

	return nil
}

// newParameter creates a parameter whose dependency follows what the
// current selection supports.
func (r *SourceToTarget) newParameter(b *valueset.Builder, res registry.Resolved, raw []any) *model.Parameter {
	profile := b.Effective(valueset.NewProfile(res.OptionDependent, res.States))
	optionDependent, states := valueset.Flags(profile)

	return &model.Parameter{
		ID:                uuid.New(),
		Type:              res.Type,
		Owner:             r.cfg.Domain,
		IsOptionDependent: optionDependent,
		StateDependence:   states,
		ValueSets:         b.Build(profile, raw...),
	}
}

// geometryPairs collects the (name, material) pairs of the bodies of n and
// the (name, color) pairs of its bodies and boundaries.
func geometryPairs(n *product.Node) (material, color []any) {
	appendColor := func(g *product.Node) {
		if g.Color != "" {
			color = append(color, g.Name, g.Color)
		}
	}

	for _, body := range n.ChildrenOfKind(product.KindBody) {
		if body.MaterialName != "" {
			material = append(material, body.Name, body.MaterialName)
		}

		appendColor(body)

		for _, boundary := range body.ChildrenOfKind(product.KindBoundary) {
			appendColor(boundary)
		}
	}

	for _, boundary := range n.ChildrenOfKind(product.KindBoundary) {
		appendColor(boundary)
	}

	return material, color
}

func scalar(v *float64) []any {
	if v == nil {
		return nil
	}

	return []any{*v}
}

func vector(v *product.Vector3) []any {
	if v == nil {
		return nil
	}

	return []any{v[0], v[1], v[2]}
}

func matrix(m *product.Matrix3) []any {
	if m == nil {
		return nil
	}

	result := make([]any, len(m))
	for i, x := range m {
		result[i] = x
	}

	return result
}
