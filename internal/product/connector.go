package product

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action tells the CAD tool what to do with a placeholder.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Placeholder is a source node the CAD tool has to create or update on
// behalf of the reverse mapping.
type Placeholder struct {
	Action Action `yaml:"action"`
	// Identifier of the existing node for updates; the identifier the new
	// node will get for creations.
	Identifier string `yaml:"identifier"`
	// ParentIdentifier is empty for a new root.
	ParentIdentifier string   `yaml:"parent,omitempty"`
	Name             string   `yaml:"name"`
	Kind             Kind     `yaml:"kind"`
	Mass             *float64 `yaml:"mass,omitempty"`
	Volume           *float64 `yaml:"volume,omitempty"`
	CenterOfGravity  *Vector3 `yaml:"center_of_gravity,omitempty,flow"`
	MomentOfInertia  *Matrix3 `yaml:"moment_of_inertia,omitempty,flow"`
}

// Connector is the boundary to the CAD authoring tool.
type Connector interface {
	// ReadTree returns a freshly read product tree with identifiers assigned.
	ReadTree(ctx context.Context) (*Node, error)
	// Materialize creates or updates the given nodes in the CAD tool.
	Materialize(ctx context.Context, placeholders []Placeholder) error
}

// FileConnector reads the product tree from a YAML file and writes
// placeholders to another YAML file.
type FileConnector struct {
	TreePath   string
	OutputPath string
}

// ReadTree implements Connector.
func (c *FileConnector) ReadTree(ctx context.Context) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return LoadTreeFile(c.TreePath)
}

// Materialize implements Connector.
func (c *FileConnector) Materialize(ctx context.Context, placeholders []Placeholder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(placeholderFile{Placeholders: placeholders})
	if err != nil {
		return fmt.Errorf("failed to marshal placeholders: %w", err)
	}

	if err := os.WriteFile(c.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write placeholders %s: %w", c.OutputPath, err)
	}

	return nil
}

type placeholderFile struct {
	Placeholders []Placeholder `yaml:"placeholders"`
}

// LoadPlaceholderFile reads placeholders written by FileConnector.Materialize.
func LoadPlaceholderFile(path string) ([]Placeholder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read placeholders %s: %w", path, err)
	}

	var pf placeholderFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse placeholders YAML: %w", err)
	}

	return pf.Placeholders, nil
}

// LoadTreeFile reads a product tree from a YAML file.
func LoadTreeFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file %s: %w", path, err)
	}

	return ParseTree(data)
}

// ParseTree parses a YAML product tree and assigns identifiers.
func ParseTree(data []byte) (*Node, error) {
	var root Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse tree YAML: %w", err)
	}

	if root.Name == "" {
		return nil, fmt.Errorf("failed to parse tree YAML: root has no name")
	}

	if root.Kind == 0 {
		root.Kind = KindAssembly
	}

	if err := AssignIdentifiers(&root); err != nil {
		return nil, err
	}

	return &root, nil
}

// WriteTreeFile writes a product tree to a YAML file.
func WriteTreeFile(root *Node, path string) error {
	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tree file %s: %w", path, err)
	}

	return nil
}
