package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "access.token"))

	_, ok := store.Get()
	require.False(t, ok)

	require.NoError(t, store.Set("t1"))
	token, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, "t1", token)

	// A write is visible to the immediately following read.
	require.NoError(t, store.Set("t2"))
	token, ok = store.Get()
	require.True(t, ok)
	require.Equal(t, "t2", token)

	require.NoError(t, store.Clear())
	_, ok = store.Get()
	require.False(t, ok)
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "access.token"))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Set("t1"))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "access.token")
	require.NoError(t, os.WriteFile(path, []byte("  t1\n"), 0600))

	store := NewFileStore(path)
	token, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, "t1", token)
}

func TestFileStoreEmptyFileMeansNoToken(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "access.token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))

	store := NewFileStore(path)
	_, ok := store.Get()
	require.False(t, ok)
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()

	store := NewKeyringStore(t.TempDir())

	_, ok := store.Get()
	require.False(t, ok)

	require.NoError(t, store.Set("t1"))
	token, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, "t1", token)

	require.NoError(t, store.Clear())
	_, ok = store.Get()
	require.False(t, ok)
	require.NoError(t, store.Clear())
}

func TestKeyringStoreFallsBackToFile(t *testing.T) {
	keyring.MockInitWithError(keyring.ErrUnsupportedPlatform)

	home := t.TempDir()
	store := NewKeyringStore(home)

	require.NoError(t, store.Set("t1"))

	// The token landed in the fallback file with owner-only permissions.
	info, err := os.Stat(filepath.Join(home, "access.token"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	token, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, "t1", token)

	require.NoError(t, store.Clear())
	_, ok = store.Get()
	require.False(t, ok)
}
