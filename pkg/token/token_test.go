package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDeterministic(t *testing.T) {
	first := Resolve("student-42@school.example")
	second := Resolve("student-42@school.example")
	assert.Equal(t, first, second)
	require.Len(t, first, Length)
}

func TestResolveNormalizes(t *testing.T) {
	assert.Equal(t, Resolve("alice@example.com"), Resolve("  Alice@Example.COM  "))
}

func TestResolveDistinctIdentifiers(t *testing.T) {
	assert.NotEqual(t, Resolve("alice"), Resolve("bob"))
}

func TestResolveHexOutput(t *testing.T) {
	tok := Resolve("charlie")
	for _, r := range tok {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}
