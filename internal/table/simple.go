package table

import (
	"cmp"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
)

// SimpleManager is the baseline table manager: every flush becomes its
// own immutable, sorted file, and reads scan files from newest to
// oldest, stopping at the first match.
type SimpleManager[K cmp.Ordered, V any] struct {
	dir    string
	tables []string // oldest to newest
	seq    int      // next sequence number; never reused, even after a compaction empties tables
}

// NewSimpleManager opens the table manager for dir, picking up whatever
// level-1 tables already exist there.
func NewSimpleManager[K cmp.Ordered, V any](dir string) (*SimpleManager[K, V], error) {
	tables, err := listLevel(dir, extLevel1)
	if err != nil {
		return nil, err
	}
	return &SimpleManager[K, V]{dir: dir, tables: tables, seq: nextSeq(tables)}, nil
}

func (m *SimpleManager[K, V]) AddTable(entries []memtable.Entry[K, V]) error {
	path := nextTableName(m.dir, extLevel1, m.seq)
	if err := writeTable[K, V](path, entries); err != nil {
		return err
	}
	m.seq++
	m.tables = append(m.tables, path)
	return nil
}

func (m *SimpleManager[K, V]) Read(key K) base.Optional[V] {
	for i := len(m.tables) - 1; i >= 0; i-- {
		if v, found, err := scanTable[K, V](m.tables[i], key); err == nil && found {
			return v
		}
	}
	return base.Optional[V]{}
}

func (m *SimpleManager[K, V]) ShouldFlush(walSize int64, memtableLen int) bool {
	return shouldFlush(walSize, memtableLen)
}

func (m *SimpleManager[K, V]) Close() error {
	return nil
}
