package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123", DefaultBcryptCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "secret123", hash)

	require.True(t, VerifyPassword(hash, "secret123"))
	require.False(t, VerifyPassword(hash, "secret124"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestHashPassword_SaltedOutput(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password", DefaultBcryptCost)
	require.NoError(t, err)
	h2, err := HashPassword("same-password", DefaultBcryptCost)
	require.NoError(t, err)

	// The embedded salt makes every hash unique.
	require.NotEqual(t, h1, h2)
	require.True(t, VerifyPassword(h1, "same-password"))
	require.True(t, VerifyPassword(h2, "same-password"))
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	t.Parallel()

	// An invalid cost falls back to the default instead of failing.
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "pw"))
}

func TestVerifyPassword_NotAHash(t *testing.T) {
	t.Parallel()

	require.False(t, VerifyPassword("not-a-bcrypt-hash", "pw"))
}
