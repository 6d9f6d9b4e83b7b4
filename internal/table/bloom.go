package table

import (
	"cmp"

	"github.com/bits-and-blooms/bloom/v3"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
)

const (
	bloomEstimatedKeys = 25000
	bloomFalsePositive = 0.05
)

// BloomManager wraps SimpleManager with a bloom filter over every live
// key ever flushed, so a definite miss never touches disk. Because the
// filter is rebuilt by a single forward scan that simply skips
// tombstone records rather than tracking "is the most recent entry
// live", it can set a bit for a key that was later deleted (a permitted
// false positive) but never fails to set one for a key that is still
// live (never a false negative).
type BloomManager[K cmp.Ordered, V any] struct {
	tm     *SimpleManager[K, V]
	filter *bloom.BloomFilter
}

// NewBloomManager opens the table manager for dir, rebuilding the bloom
// filter from every existing table.
func NewBloomManager[K cmp.Ordered, V any](dir string) (*BloomManager[K, V], error) {
	tm, err := NewSimpleManager[K, V](dir)
	if err != nil {
		return nil, err
	}
	filter := bloom.NewWithEstimates(bloomEstimatedKeys, bloomFalsePositive)
	merged := make(map[K]base.Optional[V])
	for _, path := range tm.tables {
		entries, err := readTable[K, V](path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.Value.IsTombstone() {
				merged[e.Key] = e.Value
			}
		}
	}
	for k := range merged {
		filter.Add(keyBytes(k))
	}
	return &BloomManager[K, V]{tm: tm, filter: filter}, nil
}

func (m *BloomManager[K, V]) AddTable(entries []memtable.Entry[K, V]) error {
	for _, e := range entries {
		if !e.Value.IsTombstone() {
			m.filter.Add(keyBytes(e.Key))
		}
	}
	return m.tm.AddTable(entries)
}

func (m *BloomManager[K, V]) Read(key K) base.Optional[V] {
	if !m.filter.Test(keyBytes(key)) {
		return base.Optional[V]{}
	}
	return m.tm.Read(key)
}

func (m *BloomManager[K, V]) ShouldFlush(walSize int64, memtableLen int) bool {
	return m.tm.ShouldFlush(walSize, memtableLen)
}

func (m *BloomManager[K, V]) Close() error {
	return m.tm.Close()
}
