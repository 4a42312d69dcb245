package services

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestCodeHasher(t *testing.T) {
	h := NewCodeHasher("pepper", testArgon2)

	digest := h.Hash("5551234567", "123456")
	assert.NotEqual(t, "123456", digest)
	assert.Equal(t, digest, h.Hash("5551234567", "123456"))
	assert.NotEqual(t, digest, h.Hash("5557654321", "123456"), "bound to the mobile")

	assert.True(t, h.Matches("5551234567", "123456", digest))
	assert.False(t, h.Matches("5551234567", "654321", digest))
	assert.False(t, h.Matches("5551234567", "123456", ""))

	other := NewCodeHasher("other-pepper", testArgon2)
	assert.False(t, other.Matches("5551234567", "123456", digest))
}
