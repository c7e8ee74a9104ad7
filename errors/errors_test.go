package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Invalid, KindOf(E(Invalid, "missing payment details")))
	assert.Equal(t, Unauthorized, KindOf(E(Unauthorized, "invalid payment signature")))
	assert.Equal(t, Upstream, KindOf(E(Upstream, "not found")))
	assert.Equal(t, Conflict, KindOf(E(Conflict, "payment already recorded")))
	assert.Equal(t, Other, KindOf(NewError("plain")))
	assert.Equal(t, Other, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	inner := E(Conflict, "payment already recorded")
	wrapped := fmt.Errorf("store: %w", inner)
	assert.Equal(t, Conflict, KindOf(wrapped))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "not found", MessageOf(E(Upstream, "not found")))
	assert.Equal(t, "plain", MessageOf(NewError("plain")))
	assert.Equal(t, "", MessageOf(nil))
}

func TestUnwrap(t *testing.T) {
	cause := NewError("duplicate key value violates unique constraint")
	err := E(Conflict, "payment already recorded", cause)
	assert.True(t, Is(err, cause))
}
