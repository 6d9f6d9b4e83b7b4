package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheManagerServesFromCacheAfterFirstRead(t *testing.T) {
	dir := t.TempDir()
	m, err := NewCacheManager[string, int](dir)
	require.NoError(t, err)
	require.NoError(t, m.AddTable(entries("a", 1)))

	v := m.Read("a")
	require.True(t, v.Valid)
	require.Equal(t, 1, v.Value)

	require.True(t, m.cache.Contains("a"))
}

func TestCacheManagerUpdatesHotEntryOnFlush(t *testing.T) {
	dir := t.TempDir()
	m, err := NewCacheManager[string, int](dir)
	require.NoError(t, err)
	require.NoError(t, m.AddTable(entries("a", 1)))

	_ = m.Read("a") // warms the cache
	require.NoError(t, m.AddTable(entries("a", 2)))

	v, ok := m.cache.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v.Value)
}
