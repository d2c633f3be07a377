package correspondence

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Direction tells which mapping direction created a correspondence.
type Direction int

const (
	// DirectionInvalid marks a record whose external blob could not be
	// decoded. It never matches a directional lookup.
	DirectionInvalid Direction = iota - 1
	DirectionSourceToTarget
	DirectionTargetToSource
)

const (
	identifierTypeString = "string"
	identifierTypeID     = "id"
)

// String returns the name of the direction as written to the blob.
func (d Direction) String() string {
	switch d {
	case DirectionSourceToTarget:
		return "SourceToTarget"
	case DirectionTargetToSource:
		return "TargetToSource"
	default:
		return "Invalid"
	}
}

// ParseDirection parses a direction name. Unknown names yield
// DirectionInvalid and false.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case DirectionSourceToTarget.String():
		return DirectionSourceToTarget, true
	case DirectionTargetToSource.String():
		return DirectionTargetToSource, true
	default:
		return DirectionInvalid, false
	}
}

// External is the external half of a correspondence.
type External struct {
	// Identifier is a string (source node identifier or reserved name) or a
	// uuid.UUID.
	Identifier any
	Direction  Direction
}

// Token returns the identifier as an opaque comparison token.
func (e External) Token() string {
	return Token(e.Identifier)
}

// Valid reports whether the external identifier was decoded successfully.
func (e External) Valid() bool {
	return e.Direction != DirectionInvalid
}

// Token returns the comparison token of an identifier.
func Token(identifier any) string {
	switch v := identifier.(type) {
	case string:
		return v
	case uuid.UUID:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

type blob struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifierType"`
	Direction      string `json:"direction"`
}

// Encode serializes the external identifier into its stored blob.
func Encode(e External) (string, error) {
	b := blob{
		Identifier:     e.Token(),
		IdentifierType: identifierTypeString,
		Direction:      e.Direction.String(),
	}

	if _, ok := e.Identifier.(uuid.UUID); ok {
		b.IdentifierType = identifierTypeID
	}

	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode external identifier %q: %w", b.Identifier, err)
	}

	return string(data), nil
}

// Decode parses a stored blob. It never fails: anything that does not
// decode into a known direction becomes the raw text with
// DirectionInvalid.
func Decode(raw string) External {
	degraded := External{Identifier: raw, Direction: DirectionInvalid}

	var b blob
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return degraded
	}

	direction, ok := ParseDirection(b.Direction)
	if !ok {
		return degraded
	}

	switch b.IdentifierType {
	case identifierTypeID:
		id, err := uuid.Parse(b.Identifier)
		if err != nil {
			return degraded
		}

		return External{Identifier: id, Direction: direction}
	case identifierTypeString, "":
		return External{Identifier: b.Identifier, Direction: direction}
	default:
		return degraded
	}
}
