package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "secret123", hash)

	require.True(t, VerifyPassword(hash, "secret123"))
	require.False(t, VerifyPassword(hash, "secret124"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, VerifyPassword(first, "secret123"))
	require.True(t, VerifyPassword(second, "secret123"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("secret123", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, DefaultWorkFactor, cost)
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "secret123"))
}
