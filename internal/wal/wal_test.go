package wal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmforest/internal/base"
)

func TestAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	log, err := Open[string, int](path)
	require.NoError(t, err)

	require.NoError(t, log.Append("a", base.Some(1)))
	require.NoError(t, log.Append("b", base.Some(2)))
	require.NoError(t, log.Append("a", base.None[int]()))
	require.NoError(t, log.Close())

	log, err = Open[string, int](path)
	require.NoError(t, err)
	defer log.Close()

	var got []string
	require.NoError(t, log.Replay(func(key string, value base.Optional[int]) {
		got = append(got, key)
	}))
	require.Equal(t, []string{"a", "b", "a"}, got)
}

func TestTruncateClearsLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	log, err := Open[string, int](path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append("a", base.Some(1)))
	require.NoError(t, log.Truncate())

	size, err := log.Size()
	require.NoError(t, err)
	require.Zero(t, size)

	var calls int
	require.NoError(t, log.Replay(func(string, base.Optional[int]) { calls++ }))
	require.Zero(t, calls)
}

func TestReplayStopsAtCorruptTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	log, err := Open[string, int](path)
	require.NoError(t, err)

	require.NoError(t, log.Append("a", base.Some(1)))
	require.NoError(t, log.Append("b", base.Some(2)))

	size, err := log.Size()
	require.NoError(t, err)
	require.NoError(t, log.file.Truncate(size-1))
	require.NoError(t, log.Close())

	log, err = Open[string, int](path)
	require.NoError(t, err)
	defer log.Close()

	var got []string
	require.NoError(t, log.Replay(func(key string, value base.Optional[int]) {
		got = append(got, key)
	}))
	require.Equal(t, []string{"a"}, got)
}
