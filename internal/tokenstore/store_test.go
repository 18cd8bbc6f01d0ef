package tokenstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "nested", "dir", "token"))
	require.NoError(t, err)

	require.NoError(t, store.Save("jwt-abc"))
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
}

func TestSaveOverwrites(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	require.NoError(t, store.Save("first"))
	require.NoError(t, store.Save("second"))
	token, _ := store.Load()
	assert.Equal(t, "second", token)
}

func TestClear(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	require.NoError(t, store.Save("jwt-abc"))
	require.NoError(t, store.Clear())

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing an already-absent token is fine.
	require.NoError(t, store.Clear())
}
