package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundtrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, 16)

	hash, err := HashPassword("hemligt", salt)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hemligt", salt))
	assert.False(t, CheckPassword(hash, "fel", salt))
	assert.False(t, CheckPassword(hash, "hemligt", "00000000deadbeef"))
}

func TestSaltsAreUnique(t *testing.T) {
	a, err := NewSalt()
	require.NoError(t, err)
	b, err := NewSalt()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNilTokenManagerIsDisabledAuth(t *testing.T) {
	var m *TokenManager

	token, err := m.Issue(context.Background(), "nils")
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.NoError(t, m.Validate(context.Background(), "nils", "whatever"))
	assert.NoError(t, m.Revoke(context.Background(), "nils"))
	assert.NoError(t, m.Close())
}
