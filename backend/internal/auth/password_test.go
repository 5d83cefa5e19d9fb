package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", hash)
	assert.NotContains(t, hash, "Password1!")

	// Salted, so hashing twice gives different hashes
	again, err := HashPassword("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Password1!")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "Password1!"))
	assert.False(t, CheckPassword(hash, "password1!"))
	assert.False(t, CheckPassword(hash, ""))
	assert.False(t, CheckPassword("not-a-hash", "Password1!"))
}
