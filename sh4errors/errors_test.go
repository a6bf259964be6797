package sh4errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorParts(t *testing.T) {
	assert.Equal(t, "UnsupportedOp", GetErrorName(ErrCUnsupportedOp))
	assert.Equal(t, "C1", GetErrorCode(ErrCUnsupportedOp))
	assert.Equal(t, "C1_UnsupportedOp", GetErrorCodeWithName(ErrCUnsupportedOp))
	assert.Equal(t, "Backend cannot lower an IR operation.", GetErrorDesc(ErrCUnsupportedOp))
	assert.Equal(t, "No Error", GetErrorName(nil))
	assert.Equal(t, []string{"BadMagic", "NotFound"}, GetErrorNames([]error{ErrSBadMagic, ErrSNotFound}))
}

func TestWrappedErrorsKeepIdentity(t *testing.T) {
	wrapped := fmt.Errorf("block 0x8c010000: %w", ErrCArenaFull)
	assert.True(t, errors.Is(wrapped, ErrCArenaFull))
	assert.Equal(t, "", GetErrorCode(errors.New("plain")))
}
