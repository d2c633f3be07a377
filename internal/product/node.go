package product

import (
	"errors"

	"product-sync/internal/common"
	"product-sync/internal/model"
)

// IdentifierSeparator joins the names along a node's path.
const IdentifierSeparator = "/"

// ErrNilNode is returned when a tree operation receives no root.
var ErrNilNode = errors.New("nil source node")

// Node is a node of the source product tree.
type Node struct {
	Name            string   `yaml:"name"`
	PartNumber      string   `yaml:"part_number,omitempty"`
	Description     string   `yaml:"description,omitempty"`
	Kind            Kind     `yaml:"kind"`
	Shape           *Shape   `yaml:"shape,omitempty"`
	Mass            *float64 `yaml:"mass,omitempty"`
	Volume          *float64 `yaml:"volume,omitempty"`
	CenterOfGravity *Vector3 `yaml:"center_of_gravity,omitempty,flow"`
	MomentOfInertia *Matrix3 `yaml:"moment_of_inertia,omitempty,flow"`
	MaterialName    string   `yaml:"material,omitempty"`
	Color           string   `yaml:"color,omitempty"`

	// SelectedOption and SelectedState are option and state short names
	// chosen for this node and its descendants.
	SelectedOption string `yaml:"selected_option,omitempty"`
	SelectedState  string `yaml:"selected_state,omitempty"`

	Children []*Node `yaml:"children,omitempty"`

	// Identifier is the path-derived join key, see AssignIdentifiers.
	Identifier string `yaml:"-"`
	// Parent is nil for the root.
	Parent *Node `yaml:"-"`
	// Element is the resolved target element. It is the only field the
	// mapping engine writes.
	Element model.Element `yaml:"-"`
}

// AssignIdentifiers computes Identifier and Parent for every node of the
// tree rooted at root.
func AssignIdentifiers(root *Node) error {
	if root == nil {
		return ErrNilNode
	}

	root.Parent = nil
	root.Identifier = root.Name
	assignChildren(root)

	return nil
}

func assignChildren(n *Node) {
	for _, c := range n.Children {
		c.Parent = n
		c.Identifier = n.Identifier + IdentifierSeparator + c.Name
		assignChildren(c)
	}
}

// ElementChildren returns the children that map to target elements,
// skipping bodies and boundaries.
func (n *Node) ElementChildren() []*Node {
	var result []*Node

	for _, c := range n.Children {
		if !c.Kind.IsGeometry() {
			result = append(result, c)
		}
	}

	return result
}

// ChildrenOfKind returns the direct children of the given kind.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	var result []*Node

	for _, c := range n.Children {
		if c.Kind == kind {
			result = append(result, c)
		}
	}

	return result
}

// IsDefinitionBoundary reports whether the node is a component wrapping a
// single definition-kind node, which maps to a usage over that definition.
func (n *Node) IsDefinitionBoundary() bool {
	if n.Kind != KindComponent {
		return false
	}

	child, ok := common.Single(n.ElementChildren())

	return ok && child.Kind.IsDefinitionKind()
}

// EffectiveOption returns the option selected on the node or its nearest
// ancestor, or "" when none is selected.
func (n *Node) EffectiveOption() string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.SelectedOption != "" {
			return cur.SelectedOption
		}
	}

	return ""
}

// EffectiveState returns the state selected on the node or its nearest
// ancestor, or "" when none is selected.
func (n *Node) EffectiveState() string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.SelectedState != "" {
			return cur.SelectedState
		}
	}

	return ""
}

// Walk visits the tree depth-first, parents before children. It stops at
// the first error returned by fn.
func Walk(root *Node, fn func(*Node) error) error {
	if root == nil {
		return nil
	}

	if err := fn(root); err != nil {
		return err
	}

	for _, c := range root.Children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}

	return nil
}

// Index maps the identifier of every node in the tree to the node.
func Index(root *Node) map[string]*Node {
	index := make(map[string]*Node)

	_ = Walk(root, func(n *Node) error {
		index[n.Identifier] = n
		return nil
	})

	return index
}
