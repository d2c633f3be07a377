package mapping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"product-sync/internal/diagnostic"
)

func TestValidate(t *testing.T) {
	dup := uuid.New()

	tests := []struct {
		name      string
		cfg       *Configuration
		wantValid bool
		wantCode  string
	}{
		{
			name:     "nil configuration",
			wantCode: "configuration_is_nil",
		},
		{
			name:      "empty configuration",
			cfg:       NewConfiguration("c"),
			wantValid: true,
		},
		{
			name:     "missing id",
			cfg:      &Configuration{Name: "c"},
			wantCode: "missing_configuration_id",
		},
		{
			name: "duplicate records",
			cfg: &Configuration{ID: uuid.New(), Name: "c", Correspondences: []*Record{
				{ID: dup, InternalThing: uuid.New(), ExternalID: "{}"},
				{ID: dup, InternalThing: uuid.New(), ExternalID: "{}"},
			}},
			wantCode: "duplicate_record",
		},
		{
			name: "record without internal thing",
			cfg: &Configuration{ID: uuid.New(), Name: "c", Correspondences: []*Record{
				{ID: uuid.New(), ExternalID: "{}"},
			}},
			wantCode: diagnostic.CodeInvalidRecord,
		},
		{
			name: "unparsable blob is only a warning",
			cfg: &Configuration{ID: uuid.New(), Name: "c", Correspondences: []*Record{
				{ID: uuid.New(), InternalThing: uuid.New(), ExternalID: "Root/Wheel"},
			}},
			wantValid: true,
			wantCode:  diagnostic.CodeInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.cfg)
			assert.Equal(t, tt.wantValid, res.IsValid(), res.String())

			if tt.wantCode != "" {
				assert.True(t, res.HasCode(tt.wantCode), res.String())
			}
		})
	}
}

func TestValidateFile_DuplicateNames(t *testing.T) {
	f := &File{Configurations: []*Configuration{NewConfiguration("c"), NewConfiguration("c")}}

	res := ValidateFile(f)
	assert.False(t, res.IsValid())
	assert.True(t, res.HasCode("duplicate_configuration"))
}
