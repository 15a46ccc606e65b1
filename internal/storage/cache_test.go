package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shotcraft/internal/api"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)

	_, _, ok, err := cache.ListProject("p1")
	require.NoError(t, err)
	require.False(t, ok)

	sessions := []api.Session{
		{ID: "s2", Name: "second", Type: "image_fusion", CreatedAt: "2026-01-02T10:00:00Z"},
		{ID: "s1", Name: "first", Type: "shot_suggestion", CreatedAt: "2026-01-01T10:00:00Z"},
	}
	require.NoError(t, cache.ReplaceProject("p1", sessions))

	got, fetchedAt, ok, err := cache.ListProject("p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, fetchedAt.IsZero())

	// Server display order survives the round trip.
	require.Equal(t, sessions, got)
}

func TestCacheReplaceDropsOldRows(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	require.NoError(t, cache.ReplaceProject("p1", []api.Session{
		{ID: "s1", Name: "first"},
		{ID: "s2", Name: "second"},
	}))
	require.NoError(t, cache.ReplaceProject("p1", []api.Session{
		{ID: "s3", Name: "third"},
	}))

	got, _, ok, err := cache.ListProject("p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, "s3", got[0].ID)
}

func TestCacheReplaceWithEmptyListClears(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	require.NoError(t, cache.ReplaceProject("p1", []api.Session{{ID: "s1"}}))
	require.NoError(t, cache.ReplaceProject("p1", nil))

	_, _, ok, err := cache.ListProject("p1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheProjectsAreIsolated(t *testing.T) {
	t.Parallel()

	cache := openTestCache(t)
	require.NoError(t, cache.ReplaceProject("p1", []api.Session{{ID: "s1", Name: "one"}}))
	require.NoError(t, cache.ReplaceProject("p2", []api.Session{{ID: "s2", Name: "two"}}))

	require.NoError(t, cache.ReplaceProject("p1", nil))

	got, _, ok, err := cache.ListProject("p2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "s2", got[0].ID)
}
