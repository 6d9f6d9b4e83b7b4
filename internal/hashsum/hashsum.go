// Package hashsum computes the checksum stored alongside every
// write-ahead-log record.
package hashsum

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// Stable computes a process-independent 64-bit digest over a record's
// already wire-encoded key and value, folding in a tombstone
// discriminant so a live value and a delete over the same key never
// collide. Hashing the encoded bytes, rather than the native Go value,
// is what keeps the digest stable across process runs: Go's builtin map
// and struct hashing is deliberately randomized per process.
func Stable(keyBytes, valueBytes []byte, tombstone bool) uint64 {
	d := xxhash.New()
	_, _ = d.Write(keyBytes)
	if tombstone {
		_, _ = d.Write([]byte{0})
	} else {
		_, _ = d.Write([]byte{1})
		_, _ = d.Write(valueBytes)
	}
	return d.Sum64()
}

// CRC reduces a stable digest to the 32-bit checksum stored on disk.
func CRC(digest uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], digest)
	return crc32.ChecksumIEEE(buf[:])
}
