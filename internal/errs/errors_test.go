package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("email %s taken", "a@b.c")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFound("patient not found"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to save appointment", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save appointment: connection reset", err.Error())
}

func TestNeedsVerification(t *testing.T) {
	err := NeedsVerification()

	assert.Equal(t, KindAuth, KindOf(err))
	assert.True(t, err.NeedsVerification)
	assert.False(t, Unauthorized("invalid credentials").NeedsVerification)
}
