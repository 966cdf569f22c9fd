package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
	assert.Equal(t, "alice@example.com", NormalizeEmail("Alice@Example.COM\n"))
}

func TestAnyBlank(t *testing.T) {
	assert.False(t, AnyBlank("a", "b"))
	assert.True(t, AnyBlank("a", "   "))
	assert.True(t, AnyBlank(""))
	assert.False(t, AnyBlank())
}
