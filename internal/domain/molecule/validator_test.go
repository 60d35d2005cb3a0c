package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"benzene", "c1ccccc1", true},
		{"ethanol", "CCO", true},
		{"odd_aromatic_ring", "c1cccc1", false},
		{"unclosed_branch", "C(C", false},
		{"pentavalent_carbon", "C(C)(C)(C)(C)C", false},
		{"empty_string", "", false},
		{"nil", nil, false},
		{"number", 42, false},
		{"float_nan_placeholder", 3.14, false},
		{"byte_slice", []byte("CCO"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.input))
		})
	}
}

func TestValidateSMILES(t *testing.T) {
	ok := ValidateSMILES("CCO")
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Code)
	assert.Empty(t, ok.Reason)

	bad := ValidateSMILES("c1cccc1")
	assert.False(t, bad.Valid)
	assert.Equal(t, "MOL_016", bad.Code)
	assert.Contains(t, bad.Reason, "kekulize")

	syntax := ValidateSMILES("C(C")
	assert.False(t, syntax.Valid)
	assert.Equal(t, "MOL_001", syntax.Code)
}
