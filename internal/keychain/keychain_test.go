package keychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeychain_RoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := Get("default")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Set("default", "001.1111111111.2222222222:700000001"))
	token, err := Get("default")
	require.NoError(t, err)
	assert.Equal(t, "001.1111111111.2222222222:700000001", token)

	require.NoError(t, Set("default", "replaced"))
	token, err = Get("default")
	require.NoError(t, err)
	assert.Equal(t, "replaced", token)

	require.NoError(t, Delete("default"))
	_, err = Get("default")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeychain_DeleteMissing(t *testing.T) {
	keyring.MockInit()

	err := Delete("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nobody")
}
