package table

import (
	"cmp"
	"fmt"
	"os"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
)

// CompactThreshold is how many level-1 tables SimpleManager accumulates
// before CompactManager merges them into one.
const CompactThreshold = 10

// CompactManager wraps SimpleManager and, once it accumulates
// CompactThreshold tables, merges all of them into a single replacement
// table. Merging oldest-first means a later write to the same key always
// overwrites an earlier one during the merge, preserving newest-wins
// semantics.
type CompactManager[K cmp.Ordered, V any] struct {
	tm *SimpleManager[K, V]
}

// NewCompactManager opens the table manager for dir.
func NewCompactManager[K cmp.Ordered, V any](dir string) (*CompactManager[K, V], error) {
	tm, err := NewSimpleManager[K, V](dir)
	if err != nil {
		return nil, err
	}
	return &CompactManager[K, V]{tm: tm}, nil
}

func (m *CompactManager[K, V]) AddTable(entries []memtable.Entry[K, V]) error {
	if err := m.tm.AddTable(entries); err != nil {
		return err
	}
	if len(m.tm.tables) >= CompactThreshold {
		return m.compact()
	}
	return nil
}

// compact merges every input table into one replacement. The merged
// table is written and fsynced before any input is removed, so a crash
// or write failure mid-compaction leaves the inputs intact rather than
// losing the keys they held.
func (m *CompactManager[K, V]) compact() error {
	merged := make(map[K]base.Optional[V])
	inputs := m.tm.tables
	for _, path := range inputs { // oldest to newest
		entries, err := readTable[K, V](path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			merged[e.Key] = e.Value
		}
	}

	m.tm.tables = nil
	if err := m.tm.AddTable(mapToSortedEntries(merged)); err != nil {
		m.tm.tables = inputs
		return err
	}

	for _, path := range inputs {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("table: remove %s: %w", path, err)
		}
	}
	return nil
}

func (m *CompactManager[K, V]) Read(key K) base.Optional[V] {
	return m.tm.Read(key)
}

func (m *CompactManager[K, V]) ShouldFlush(walSize int64, memtableLen int) bool {
	return m.tm.ShouldFlush(walSize, memtableLen)
}

func (m *CompactManager[K, V]) Close() error {
	return m.tm.Close()
}
