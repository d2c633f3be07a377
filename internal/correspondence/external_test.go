package correspondence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		external External
		wantBlob string
	}{
		{
			name:     "string identifier",
			external: External{Identifier: "Root/Wheel", Direction: DirectionSourceToTarget},
			wantBlob: `{"identifier":"Root/Wheel","identifierType":"string","direction":"SourceToTarget"}`,
		},
		{
			name:     "id identifier",
			external: External{Identifier: id, Direction: DirectionTargetToSource},
			wantBlob: `{"identifier":"` + id.String() + `","identifierType":"id","direction":"TargetToSource"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := Encode(tt.external)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBlob, blob)

			decoded := Decode(blob)
			assert.Equal(t, tt.external, decoded)
			assert.True(t, decoded.Valid())
		})
	}
}

func TestDecode_Degraded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "Root/Wheel"},
		{name: "unknown direction", raw: `{"identifier":"Root","direction":"Sideways"}`},
		{name: "missing direction", raw: `{"identifier":"Root"}`},
		{name: "non string field", raw: `{"identifier":42,"direction":"SourceToTarget"}`},
		{name: "bad id", raw: `{"identifier":"nope","identifierType":"id","direction":"SourceToTarget"}`},
		{name: "unknown identifier type", raw: `{"identifier":"Root","identifierType":"path","direction":"SourceToTarget"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Decode(tt.raw)
			assert.Equal(t, DirectionInvalid, e.Direction)
			assert.Equal(t, tt.raw, e.Identifier)
			assert.False(t, e.Valid())
		})
	}
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "Invalid", DirectionInvalid.String())

	d, ok := ParseDirection("TargetToSource")
	assert.True(t, ok)
	assert.Equal(t, DirectionTargetToSource, d)

	_, ok = ParseDirection("Invalid")
	assert.False(t, ok)
}
