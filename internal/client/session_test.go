package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	store, err := NewTokenStore(filepath.Join(t.TempDir(), "nested", "token"))
	require.NoError(t, err)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file reads as no token")

	require.NoError(t, store.Save("abc.def.ghi"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// clearing twice is not an error
	require.NoError(t, store.Clear())
}
