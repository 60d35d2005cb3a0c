package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
// Codes are "<MODULE>_<NNN>".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeInternal     ErrorCode = "COMMON_001"
	CodeInvalidParam ErrorCode = "COMMON_002"
	CodeNotFound     ErrorCode = "COMMON_005"
	CodeValidation   ErrorCode = "COMMON_010"
	CodeStorage      ErrorCode = "COMMON_012"
	CodeNotSupported ErrorCode = "COMMON_016"
)

// Molecule Module Error Codes
const (
	CodeMoleculeInvalidSMILES       ErrorCode = "MOL_001"
	CodeFingerprintGenerationFailed ErrorCode = "MOL_007"
	CodeSubstructureQueryInvalid    ErrorCode = "MOL_012"
	CodeMoleculeSanitizationFailed  ErrorCode = "MOL_016"
)

// Dataset Module Error Codes
const (
	CodeDuplicateIdentifier ErrorCode = "DAT_001"
	CodeMalformedTable      ErrorCode = "DAT_002"
	CodeMissingColumn       ErrorCode = "DAT_003"
)

// Evaluation Module Error Codes
const (
	CodeInsufficientSample ErrorCode = "EVA_001"
	CodeFoldCountMismatch  ErrorCode = "EVA_002"
)

// Extrapolation Module Error Codes
const (
	CodeMissingLookupKey     ErrorCode = "EXT_001"
	CodeInvalidSamplingTable ErrorCode = "EXT_002"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	CodeInternal:     "internal error",
	CodeInvalidParam: "bad request",
	CodeNotFound:     "resource not found",
	CodeValidation:   "validation failed",
	CodeStorage:      "storage error",
	CodeNotSupported: "not supported",

	CodeMoleculeInvalidSMILES:       "invalid SMILES",
	CodeFingerprintGenerationFailed: "failed to generate fingerprint",
	CodeSubstructureQueryInvalid:    "invalid substructure query",
	CodeMoleculeSanitizationFailed:  "molecule failed sanitization",

	CodeDuplicateIdentifier: "duplicate identifier in dataset",
	CodeMalformedTable:      "malformed table",
	CodeMissingColumn:       "missing column",

	CodeInsufficientSample: "insufficient sample for metric",
	CodeFoldCountMismatch:  "fold count mismatch",

	CodeMissingLookupKey:     "missing lookup key",
	CodeInvalidSamplingTable: "invalid sampling-ratio table",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
