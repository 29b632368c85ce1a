package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("sekret123", 4)
	require.NoError(t, err)
	require.NotEqual(t, "sekret123", hash)

	assert.True(t, VerifyPassword(hash, "sekret123"))
	assert.False(t, VerifyPassword(hash, "sekret124"))
	assert.False(t, VerifyPassword("", "sekret123"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	a, err := HashPassword("same", 4)
	require.NoError(t, err)
	b, err := HashPassword("same", 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
