package registry

// Kind is a semantic parameter kind.
type Kind string

const (
	KindMass                Kind = "mass"
	KindVolume              Kind = "volume"
	KindCenterOfGravity     Kind = "center_of_gravity"
	KindMomentOfInertia     Kind = "moment_of_inertia"
	KindPosition            Kind = "position"
	KindOrientation         Kind = "orientation"
	KindRelativePosition    Kind = "relative_position"
	KindRelativeOrientation Kind = "relative_orientation"

	KindShapeKind            Kind = "shape_kind"
	KindShapeLength          Kind = "shape_length"
	KindShapeWidthOrDiameter Kind = "shape_width_or_diameter"
	KindShapeHeight          Kind = "shape_height"
	KindShapeAngle           Kind = "shape_angle"
	KindShapeSupportAngle    Kind = "shape_support_angle"
	KindShapeThickness       Kind = "shape_thickness"
	KindShapeArea            Kind = "shape_area"
	KindShapeDensity         Kind = "shape_density"
	KindShapeMassMargin      Kind = "shape_mass_margin"

	KindMaterial Kind = "material"
	KindColor    Kind = "color"
)

// DefaultShortNames maps every kind to the parameter type short name used
// when no binding is configured.
var DefaultShortNames = map[Kind]string{
	KindMass:                 "m",
	KindVolume:               "vol",
	KindCenterOfGravity:      "cog",
	KindMomentOfInertia:      "moi",
	KindPosition:             "position",
	KindOrientation:          "orientation",
	KindRelativePosition:     "rel_position",
	KindRelativeOrientation:  "rel_orientation",
	KindShapeKind:            "kind",
	KindShapeLength:          "l",
	KindShapeWidthOrDiameter: "wid_diameter",
	KindShapeHeight:          "h",
	KindShapeAngle:           "angle",
	KindShapeSupportAngle:    "support_angle",
	KindShapeThickness:       "thickn",
	KindShapeArea:            "area",
	KindShapeDensity:         "density",
	KindShapeMassMargin:      "mass_margin",
	KindMaterial:             "material",
	KindColor:                "color",
}

// Kinds lists every kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindMass, KindVolume, KindCenterOfGravity, KindMomentOfInertia,
		KindPosition, KindOrientation, KindRelativePosition, KindRelativeOrientation,
		KindShapeKind, KindShapeLength, KindShapeWidthOrDiameter, KindShapeHeight,
		KindShapeAngle, KindShapeSupportAngle, KindShapeThickness, KindShapeArea,
		KindShapeDensity, KindShapeMassMargin,
		KindMaterial, KindColor,
	}
}
