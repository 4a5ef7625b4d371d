package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash("  "))
	assert.Equal(t, "abc", stringOrDash("abc"))
	assert.Equal(t, "", dashToEmpty(stringOrDash("")))
}

func TestNullFloatRoundTrip(t *testing.T) {
	assert.Nil(t, floatPtr(nullFloat(nil)))

	v := 87.5
	got := floatPtr(nullFloat(&v))
	if assert.NotNil(t, got) {
		assert.Equal(t, 87.5, *got)
	}
}
