package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.Compare(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	long := strings.Repeat("a", 200)

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Compare(hash, long)
	require.NoError(t, err)
	assert.True(t, ok)

	// characters past byte 72 still count
	ok, err = h.Compare(hash, strings.Repeat("a", 199)+"b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_CorruptHashIsSystemError(t *testing.T) {
	h := NewBcryptHasher()

	ok, err := h.Compare("not-a-bcrypt-hash", "secret1")
	assert.False(t, ok)
	assert.Error(t, err)
}
