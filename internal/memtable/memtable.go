// Package memtable implements the engine's mutable, in-memory staging
// area for writes: the fastest path a key passes through before a flush
// hands it to the table manager.
package memtable

import (
	"cmp"
	"slices"

	"lsmforest/internal/base"
)

// Entry pairs a key with its (possibly tombstoned) value, the shape a
// table manager expects when flushing a memtable to a new table.
type Entry[K cmp.Ordered, V any] struct {
	Key   K
	Value base.Optional[V]
}

// Memtable is an ordered K -> optional V map. It is not safe for
// concurrent use; the tree coordinator that owns a memtable serializes
// access to it under its own lock.
type Memtable[K cmp.Ordered, V any] struct {
	entries map[K]base.Optional[V]
}

// New returns an empty memtable.
func New[K cmp.Ordered, V any]() *Memtable[K, V] {
	return &Memtable[K, V]{entries: make(map[K]base.Optional[V])}
}

// Get returns the entry for key, if one has been written since the
// memtable was last cleared.
func (m *Memtable[K, V]) Get(key K) (base.Optional[V], bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Put records value for key, overwriting whatever was there before.
func (m *Memtable[K, V]) Put(key K, value base.Optional[V]) {
	m.entries[key] = value
}

// Len reports how many distinct keys the memtable currently holds.
func (m *Memtable[K, V]) Len() int {
	return len(m.entries)
}

// Snapshot returns every entry sorted by key, ready to flush to a new
// table.
func (m *Memtable[K, V]) Snapshot() []Entry[K, V] {
	out := make([]Entry[K, V], 0, len(m.entries))
	for k, v := range m.entries {
		out = append(out, Entry[K, V]{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b Entry[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Clear empties the memtable, used right after its contents have been
// flushed to a new table.
func (m *Memtable[K, V]) Clear() {
	m.entries = make(map[K]base.Optional[V])
}
