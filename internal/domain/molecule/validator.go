package molecule

import (
	"github.com/turtacn/odorscape/pkg/errors"
)

// Verdict is the outcome of validating one structure string.
type Verdict struct {
	Input string `json:"input" yaml:"input"`
	Valid bool   `json:"valid" yaml:"valid"`
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	// Reason is the error message for rejected input.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Validate reports whether v is a string that parses and sanitizes.  Any
// other type is rejected.
func Validate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := NewMolecule(s)
	return err == nil
}

// ValidateSMILES checks s and explains a rejection.
func ValidateSMILES(s string) Verdict {
	if _, err := NewMolecule(s); err != nil {
		return Verdict{Input: s, Valid: false, Code: string(errors.GetCode(err)), Reason: err.Error()}
	}
	return Verdict{Input: s, Valid: true}
}
