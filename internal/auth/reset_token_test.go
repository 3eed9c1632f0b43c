package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetSecret(t *testing.T) {
	userID := uuid.New()

	first, err := NewResetSecret(userID)
	require.NoError(t, err)
	second, err := NewResetSecret(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, userID.String()))
	assert.Len(t, first, 64+len(userID.String()))
}

func TestHashResetToken(t *testing.T) {
	hash := HashResetToken("abc")

	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hash)
	assert.Equal(t, hash, HashResetToken("abc"))
	assert.NotEqual(t, hash, HashResetToken("abd"))
}
