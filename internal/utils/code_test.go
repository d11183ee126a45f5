package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFiveDigitCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := FiveDigitCode()
		require.NoError(t, err)
		require.Len(t, code, 5)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 10000)
		assert.LessOrEqual(t, n, 99999)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("", "hunter22"))
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
