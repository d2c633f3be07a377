package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_AddAndQuery(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddWarning(CodeParameterTypeMissing, "parameter type not found", "Root/Body", "mas", "m", "mass")
	d.AddInfo(CodeValueAbsent, "volume absent", "Root", "vol")

	assert.True(t, d.IsValid())
	assert.True(t, d.HasCode(CodeValueAbsent))
	assert.False(t, d.HasCode(CodeOrphanedNode))

	d.AddError(CodeInvalidRecord, "record unreadable", "", "")
	assert.True(t, d.HasErrors())
	require.EqualError(t, d.Error(), "[invalid_record] record unreadable")
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected string
	}{
		{
			name:     "message only",
			diag:     Diagnostic{Message: "plain"},
			expected: "plain",
		},
		{
			name:     "node and parameter",
			diag:     Diagnostic{Code: "c", Message: "m", Node: "Root/A", Parameter: "vol"},
			expected: "[Root/A] vol: [c] m",
		},
		{
			name:     "suggestions",
			diag:     Diagnostic{Message: "missing", Parameter: "mas", Suggestions: []string{"m", "mass"}},
			expected: "mas: missing (did you mean m, mass?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.diag.String())
		})
	}
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics

	a.AddWarning(CodeNoActiveSelection, "skipped", "n", "p")
	b.AddWarning(CodeOrphanedNode, "gone", "n2", "")
	b.AddInfo(CodeValueAbsent, "absent", "n3", "")

	a.Merge(b)

	assert.Len(t, a.Warnings, 2)
	assert.Len(t, a.Infos, 1)
	assert.Equal(t, DiagnosticWarning.String(), "warning")
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
