package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
)

func entries(pairs ...any) []memtable.Entry[string, int] {
	var out []memtable.Entry[string, int]
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, memtable.Entry[string, int]{
			Key:   pairs[i].(string),
			Value: base.Some(pairs[i+1].(int)),
		})
	}
	return out
}

func TestSimpleManagerReadsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	m, err := NewSimpleManager[string, int](dir)
	require.NoError(t, err)

	require.NoError(t, m.AddTable(entries("a", 1)))
	require.NoError(t, m.AddTable(entries("a", 2)))

	v := m.Read("a")
	require.True(t, v.Valid)
	require.Equal(t, 2, v.Value)
}

func TestSimpleManagerMissingKey(t *testing.T) {
	dir := t.TempDir()
	m, err := NewSimpleManager[string, int](dir)
	require.NoError(t, err)
	require.NoError(t, m.AddTable(entries("a", 1)))

	v := m.Read("z")
	require.False(t, v.Valid)
}

func TestSimpleManagerTombstoneShadowsOlderValue(t *testing.T) {
	dir := t.TempDir()
	m, err := NewSimpleManager[string, int](dir)
	require.NoError(t, err)

	require.NoError(t, m.AddTable(entries("a", 1)))
	require.NoError(t, m.AddTable([]memtable.Entry[string, int]{
		{Key: "a", Value: base.None[int]()},
	}))

	v := m.Read("a")
	require.False(t, v.Valid)
}

func TestSimpleManagerRecoversExistingTables(t *testing.T) {
	dir := t.TempDir()
	m, err := NewSimpleManager[string, int](dir)
	require.NoError(t, err)
	require.NoError(t, m.AddTable(entries("a", 1)))

	reopened, err := NewSimpleManager[string, int](dir)
	require.NoError(t, err)
	v := reopened.Read("a")
	require.True(t, v.Valid)
	require.Equal(t, 1, v.Value)
}

func TestNextTableNameIsDeterministic(t *testing.T) {
	require.Equal(t, filepath.Join("dir", "sstable_00000003.sst"), nextTableName("dir", extLevel1, 3))
}
