package mapping

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"
)

// Reserved external identifiers of the designation singletons.
const (
	MaterialDesignation = "__material_parameter_type__"
	ColorDesignation    = "__color_parameter_type__"
)

// CurrentVersion is written to files that do not carry a version.
const CurrentVersion = "1"

// Persistable is a thing a backing store transaction can create or update.
type Persistable interface {
	// PersistentID is the id the thing is stored under.
	PersistentID() uuid.UUID
}

// File represents the root of a YAML mapping configuration file.
type File struct {
	// Version of the file schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Configurations stored in the file.
	Configurations []*Configuration `yaml:"configurations"`
}

// Configuration is one named synchronization setup and all of its
// correspondence records.
type Configuration struct {
	ID   uuid.UUID `yaml:"id"`
	Name string    `yaml:"name"`

	// Correspondences in creation order.
	Correspondences []*Record `yaml:"correspondences,omitempty"`
}

// Record is a persisted correspondence.
type Record struct {
	ID uuid.UUID `yaml:"id"`

	// InternalThing is the id of the target thing the record points at.
	InternalThing uuid.UUID `yaml:"internal_thing"`

	// ExternalID is the serialized external identifier blob.
	ExternalID string `yaml:"external_id"`
}

// NewConfiguration creates an empty configuration with a fresh id.
func NewConfiguration(name string) *Configuration {
	return &Configuration{ID: uuid.New(), Name: name}
}

// Clone returns a deep copy of the configuration.
func (c *Configuration) Clone() (*Configuration, error) {
	var clone Configuration
	if err := deepcopy.Copy(&clone, c); err != nil {
		return nil, fmt.Errorf("failed to copy configuration %s: %w", c.Name, err)
	}

	return &clone, nil
}

// PersistentID implements Persistable.
func (c *Configuration) PersistentID() uuid.UUID { return c.ID }

// PersistentID implements Persistable.
func (r *Record) PersistentID() uuid.UUID { return r.ID }

// Record returns the record with the given id.
func (c *Configuration) Record(id uuid.UUID) (*Record, bool) {
	for _, r := range c.Correspondences {
		if r.ID == id {
			return r, true
		}
	}

	return nil, false
}

// RecordsFor returns the records pointing at the given internal thing.
func (c *Configuration) RecordsFor(internalThing uuid.UUID) []*Record {
	var result []*Record

	for _, r := range c.Correspondences {
		if r.InternalThing == internalThing {
			result = append(result, r)
		}
	}

	return result
}

// Put replaces the record with the same id, or appends it.
func (c *Configuration) Put(r *Record) {
	for i, existing := range c.Correspondences {
		if existing.ID == r.ID {
			c.Correspondences[i] = r
			return
		}
	}

	c.Correspondences = append(c.Correspondences, r)
}

// RemoveRecord deletes the record with the given id and reports whether it
// existed.
func (c *Configuration) RemoveRecord(id uuid.UUID) bool {
	for i, r := range c.Correspondences {
		if r.ID == id {
			c.Correspondences = append(c.Correspondences[:i], c.Correspondences[i+1:]...)
			return true
		}
	}

	return false
}

// Configuration returns the configuration with the given name.
func (f *File) Configuration(name string) (*Configuration, bool) {
	for _, c := range f.Configurations {
		if c.Name == name {
			return c, true
		}
	}

	return nil, false
}

// ConfigurationByID returns the configuration with the given id.
func (f *File) ConfigurationByID(id uuid.UUID) (*Configuration, bool) {
	for _, c := range f.Configurations {
		if c.ID == id {
			return c, true
		}
	}

	return nil, false
}

// ConfigurationOf returns the configuration owning the record with the
// given id.
func (f *File) ConfigurationOf(recordID uuid.UUID) (*Configuration, bool) {
	for _, c := range f.Configurations {
		if _, ok := c.Record(recordID); ok {
			return c, true
		}
	}

	return nil, false
}
