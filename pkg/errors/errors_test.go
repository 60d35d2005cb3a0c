// Package errors_test covers the AppError type, factory functions and the
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"duplicate", errors.CodeDuplicateIdentifier, "duplicate SMILES CCO"},
		{"invalid smiles", errors.CodeMoleculeInvalidSMILES, "SMILES must not be empty"},
		{"missing key", errors.CodeMissingLookupKey, "no ratio for HAC 99"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.CodeMissingLookupKey, "no sampling ratio for HAC %d", 99)
	assert.Equal(t, "no sampling ratio for HAC 99", ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("open data.csv: no such file")
	wrapped := errors.Wrap(root, errors.CodeStorage, "failed to open dataset")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.CodeStorage, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeDuplicateIdentifier, "duplicate")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	assert.Equal(t, errors.CodeDuplicateIdentifier, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeDuplicateIdentifier, "duplicate")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeMoleculeInvalidSMILES, "invalid SMILES")
	assert.Equal(t, "[MOL_001] invalid SMILES", ae.Error())

	detailed := ae.WithDetail("smiles=C1CC")
	assert.Equal(t, "[MOL_001] invalid SMILES: smiles=C1CC", detailed.Error())

	caused := errors.Wrap(fmt.Errorf("boom"), errors.CodeInternal, "failed")
	assert.Equal(t, "[COMMON_001] failed: boom", caused.Error())
}

func TestWithDetail_CopySemantics(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeNotFound, "resource missing")
	detailed := original.WithDetailf("id=%d", 42)

	assert.Empty(t, original.Detail)
	assert.Equal(t, "id=42", detailed.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeMissingLookupKey, "missing")
	outer := fmt.Errorf("extrapolate: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.CodeMissingLookupKey))
	assert.False(t, errors.IsCode(outer, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeValidation, errors.GetCode(errors.Validation("bad")))
	assert.Equal(t, errors.CodeInternal, errors.GetCode(errors.Internal("broken")))
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(errors.InvalidParam("bad")))
}
