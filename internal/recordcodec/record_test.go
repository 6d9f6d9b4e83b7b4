package recordcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmforest/internal/base"
)

func TestLogEntryRoundTrip(t *testing.T) {
	entry, err := NewLogEntry("alpha", base.Some(42))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, entry.Encode(&buf))

	decoded, status := DecodeLogEntry[string, int](&buf)
	require.Equal(t, StatusOK, status)
	require.Equal(t, entry, decoded)
}

func TestLogEntryTombstoneRoundTrip(t *testing.T) {
	entry, err := NewLogEntry("alpha", base.None[int]())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, entry.Encode(&buf))

	decoded, status := DecodeLogEntry[string, int](&buf)
	require.Equal(t, StatusOK, status)
	require.True(t, decoded.Value.IsTombstone())
}

func TestDecodeLogEntryCleanEOF(t *testing.T) {
	_, status := DecodeLogEntry[string, int](bytes.NewReader(nil))
	require.Equal(t, StatusEOF, status)
}

func TestDecodeLogEntryCorruptTail(t *testing.T) {
	entry, err := NewLogEntry("alpha", base.Some(42))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, entry.Encode(&buf))

	truncated := buf.Bytes()[:buf.Len()-1]
	_, status := DecodeLogEntry[string, int](bytes.NewReader(truncated))
	require.Equal(t, StatusCorrupt, status)
}

func TestDecodeLogEntryBadChecksum(t *testing.T) {
	entry, err := NewLogEntry("alpha", base.Some(42))
	require.NoError(t, err)
	entry.Crc ^= 0xff

	var buf bytes.Buffer
	require.NoError(t, entry.Encode(&buf))

	_, status := DecodeLogEntry[string, int](&buf)
	require.Equal(t, StatusCorrupt, status)
}

func TestTableEntryRoundTrip(t *testing.T) {
	entry := TableEntry[string, int]{Key: "beta", Value: base.Some(7)}

	var buf bytes.Buffer
	require.NoError(t, entry.Encode(&buf))

	decoded, status := DecodeTableEntry[string, int](&buf)
	require.Equal(t, StatusOK, status)
	require.Equal(t, entry, decoded)
}

func TestDecodeTableEntryCleanEOF(t *testing.T) {
	_, status := DecodeTableEntry[string, int](bytes.NewReader(nil))
	require.Equal(t, StatusEOF, status)
}
