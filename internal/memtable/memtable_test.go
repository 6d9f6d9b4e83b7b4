package memtable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lsmforest/internal/base"
)

func TestPutAndGet(t *testing.T) {
	m := New[string, int]()
	m.Put("a", base.Some(1))

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, base.Some(1), v)

	_, ok = m.Get("missing")
	require.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	m := New[string, int]()
	m.Put("a", base.Some(1))
	m.Put("a", base.Some(2))
	m.Put("a", base.None[int]())

	v, ok := m.Get("a")
	require.True(t, ok)
	require.True(t, v.IsTombstone())
	require.Equal(t, 1, m.Len())
}

func TestSnapshotIsSorted(t *testing.T) {
	m := New[string, int]()
	m.Put("c", base.Some(3))
	m.Put("a", base.Some(1))
	m.Put("b", base.Some(2))

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, "a", snap[0].Key)
	require.Equal(t, "b", snap[1].Key)
	require.Equal(t, "c", snap[2].Key)
}

func TestClearEmptiesMemtable(t *testing.T) {
	m := New[string, int]()
	m.Put("a", base.Some(1))
	m.Clear()

	require.Zero(t, m.Len())
	_, ok := m.Get("a")
	require.False(t, ok)
}
