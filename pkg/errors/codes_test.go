package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", CodeInternal.String())
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "missing lookup key", DefaultMessageForCode(CodeMissingLookupKey))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "MOL", ModuleForCode(CodeMoleculeInvalidSMILES))
	assert.Equal(t, "EXT", ModuleForCode(CodeMissingLookupKey))
	assert.Equal(t, "UNKNOWN", ModuleForCode(CodeOK))
}

func TestErrorCode_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]+_[0-9]{3}$`)
	for code := range ErrorCodeMessage {
		assert.Regexp(t, pattern, string(code), "code %s", code)
	}
}
