package product

// Vector3 is an (x, y, z) triple.
type Vector3 [3]float64

// Matrix3 is a 3×3 matrix stored row-major.
type Matrix3 [9]float64

// ShapeKind names the primitive a part's geometry was authored as.
type ShapeKind string

const (
	ShapeBox            ShapeKind = "box"
	ShapeCone           ShapeKind = "cone"
	ShapeCylinder       ShapeKind = "cylinder"
	ShapeDisc           ShapeKind = "disc"
	ShapeHexagonalPrism ShapeKind = "hexagonal-prism"
	ShapeParaboloid     ShapeKind = "paraboloid"
	ShapeRectangle      ShapeKind = "rectangle"
	ShapeSphere         ShapeKind = "sphere"
	ShapeTorus          ShapeKind = "torus"
	ShapeTriangle       ShapeKind = "triangle"
	ShapeWedge          ShapeKind = "wedge"
)

var supportedShapes = map[ShapeKind]struct{}{
	ShapeBox: {}, ShapeCone: {}, ShapeCylinder: {}, ShapeDisc: {},
	ShapeHexagonalPrism: {}, ShapeParaboloid: {}, ShapeRectangle: {},
	ShapeSphere: {}, ShapeTorus: {}, ShapeTriangle: {}, ShapeWedge: {},
}

// Supported reports whether shape parameters can be mapped for this kind.
func (k ShapeKind) Supported() bool {
	_, ok := supportedShapes[k]
	return ok
}

// Shape is the geometry descriptor of a node. Every dimension is optional;
// an absent dimension is nil rather than zero.
type Shape struct {
	Kind            ShapeKind `yaml:"kind"`
	Length          *float64  `yaml:"length,omitempty"`
	WidthOrDiameter *float64  `yaml:"width_or_diameter,omitempty"`
	Height          *float64  `yaml:"height,omitempty"`
	Angle           *float64  `yaml:"angle,omitempty"`
	SupportAngle    *float64  `yaml:"support_angle,omitempty"`
	Thickness       *float64  `yaml:"thickness,omitempty"`
	Area            *float64  `yaml:"area,omitempty"`
	Density         *float64  `yaml:"density,omitempty"`
	MassMargin      *float64  `yaml:"mass_margin,omitempty"`

	Position            *Vector3 `yaml:"position,omitempty,flow"`
	Orientation         *Matrix3 `yaml:"orientation,omitempty,flow"`
	RelativePosition    *Vector3 `yaml:"relative_position,omitempty,flow"`
	RelativeOrientation *Matrix3 `yaml:"relative_orientation,omitempty,flow"`
}
