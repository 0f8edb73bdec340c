package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	for _, length := range []int{0, 8, 32, 64} {
		result, err := GenerateSecureRandomString(length)
		require.NoError(t, err)
		assert.Len(t, result, length)
	}
}

func TestGenerateSecureRandomString_URLSafe(t *testing.T) {
	result, err := GenerateSecureRandomString(100)
	require.NoError(t, err)

	for i, c := range result {
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '-' || c == '_'
		assert.True(t, valid, "invalid character %q at position %d", c, i)
	}
}

func TestEnsureSecret(t *testing.T) {
	t.Run("keeps configured secret", func(t *testing.T) {
		secret, generated, err := EnsureSecret("s3cr3t-value", 32)
		require.NoError(t, err)
		assert.False(t, generated)
		assert.Equal(t, "s3cr3t-value", secret)
	})

	t.Run("replaces placeholder", func(t *testing.T) {
		secret, generated, err := EnsureSecret("CHANGEME", 32)
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Len(t, secret, 32)
	})

	t.Run("replaces blank", func(t *testing.T) {
		secret, generated, err := EnsureSecret("  ", 16)
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Len(t, secret, 16)
	})
}
