package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Bolt", expected: "Bolt"},
		{name: "spaces", input: "Main Body", expected: "MainBody"},
		{name: "instance suffix", input: "Bolt.1", expected: "Bolt1"},
		{name: "diacritics", input: "Überwurf Mutter", expected: "UberwurfMutter"},
		{name: "latin letter without decomposition", input: "Flansch-Ø20", expected: "FlanschØ20"},
		{name: "cyrillic", input: "Болт", expected: "Болт"},
		{name: "cyrillic marks kept", input: "Гайка М8", expected: "ГайкаМ8"},
		{name: "greek", input: "Δέλτα", expected: "Δέλτα"},
		{name: "underscore kept", input: "rel_position", expected: "rel_position"},
		{name: "nothing usable", input: " .-/ ", expected: EmptyShortName},
		{name: "empty", input: "", expected: EmptyShortName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShortName(tt.input))
		})
	}
}

func TestShortName_Stable(t *testing.T) {
	// Deriving twice must not change the result.
	for _, in := range []string{"Main Body", "Überwurf", "Part_12.3", "Гайка"} {
		once := ShortName(in)
		assert.Equal(t, once, ShortName(once))
	}
}
