package mapping

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"product-sync/internal/diagnostic"
)

// Validate checks a configuration for structural problems: missing ids,
// duplicated records and external identifier blobs that are not JSON
// objects. It does not interpret the blobs.
func Validate(c *Configuration) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if c == nil {
		res.AddError("configuration_is_nil", "configuration is nil", "", "")
		return res
	}

	if c.ID == uuid.Nil {
		res.AddError("missing_configuration_id", "configuration has no id", c.Name, "")
	}

	if c.Name == "" {
		res.AddWarning("missing_configuration_name", "configuration has no name", c.ID.String(), "")
	}

	seen := make(map[uuid.UUID]struct{}, len(c.Correspondences))

	for i, r := range c.Correspondences {
		if r == nil {
			res.AddError(diagnostic.CodeInvalidRecord, fmt.Sprintf("record %d is nil", i), "", "")
			continue
		}

		recordStr := r.ID.String()

		if _, ok := seen[r.ID]; ok {
			res.AddError("duplicate_record", fmt.Sprintf("duplicate record id %s", r.ID), recordStr, "")
			continue
		}

		seen[r.ID] = struct{}{}

		if r.InternalThing == uuid.Nil {
			res.AddError(diagnostic.CodeInvalidRecord, "record has no internal thing", recordStr, "")
		}

		var blob map[string]any
		if err := json.Unmarshal([]byte(r.ExternalID), &blob); err != nil {
			res.AddWarning(diagnostic.CodeInvalidRecord,
				fmt.Sprintf("external identifier is not a JSON object: %v", err), recordStr, "")
		}
	}

	return res
}

// ValidateFile validates every configuration of a file and checks that
// configuration names are unique.
func ValidateFile(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("file_is_nil", "mapping file is nil", "", "")
		return res
	}

	names := make(map[string]struct{}, len(f.Configurations))

	for _, c := range f.Configurations {
		if c != nil && c.Name != "" {
			if _, ok := names[c.Name]; ok {
				res.AddError("duplicate_configuration", fmt.Sprintf("duplicate configuration %q", c.Name), c.Name, "")
			}

			names[c.Name] = struct{}{}
		}

		res.Merge(*Validate(c))
	}

	return res
}
