package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	hashed, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, h.Compare(hashed, "correct horse"))
	assert.ErrorIs(t, h.Compare(hashed, "battery staple"), bcrypt.ErrMismatchedHashAndPassword)

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestResetToken(t *testing.T) {
	t.Parallel()

	token, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 43)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashResetToken(token))

	again, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}
