package product

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is the role of a node in the source product tree.
type Kind int

const (
	_ Kind = iota // zero value is an unset kind

	KindAssembly  // assembly
	KindComponent // component
	KindPart      // part
	KindBody      // body
	KindBoundary  // boundary
)

// IsDefinitionKind reports whether nodes of this kind describe a reusable
// definition on their own.
func (k Kind) IsDefinitionKind() bool {
	switch k {
	default:
		return false
	case KindAssembly, KindPart:
		return true
	}
}

// IsGeometry reports whether nodes of this kind are geometry carried by an
// element rather than elements themselves.
func (k Kind) IsGeometry() bool {
	switch k {
	default:
		return false
	case KindBody, KindBoundary:
		return true
	}
}

// ParseKind parses a kind name, case-insensitively. "part-definition" is
// accepted as an alias of part.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "part-definition" {
		return KindPart, nil
	}

	for k := KindAssembly; k <= KindBoundary; k++ {
		if k.String() == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
