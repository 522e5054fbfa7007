package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("user %d not found", 7)))
	assert.Equal(t, KindConflict, KindOf(Conflict("duplicate")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidState("bad transition"))
	assert.True(t, Is(err, KindInvalidState))
	assert.False(t, Is(err, KindConflict))
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("driver broke")
	err := Internal("query failed", inner)
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "driver broke")
}

func TestIsNil(t *testing.T) {
	assert.False(t, Is(nil, KindInternal))
}
