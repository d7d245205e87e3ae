package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omerfarooq187/hostel-management/apperr"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("student %d not found", 7)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(apperr.Validation("invalid bed number")))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(apperr.Conflict("bed already occupied")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(apperr.Internal(errors.New("boom"), "pdf generation failed")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("plain")))
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("transfer: %w", apperr.Conflict("room is full"))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "room is full", apperr.MessageOf(err))
}

func TestInternalMessageDoesNotLeakCause(t *testing.T) {
	err := apperr.Internal(errors.New("dial tcp 10.0.0.1:25: refused"), "mail delivery failed")
	assert.Equal(t, "mail delivery failed", apperr.MessageOf(err))
	assert.Contains(t, err.Error(), "refused") // full detail for logs
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "something went wrong", apperr.MessageOf(errors.New("pq: cursor blown")))
}
