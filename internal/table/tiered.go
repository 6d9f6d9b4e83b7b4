package table

import (
	"cmp"
	"fmt"
	"os"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
)

const (
	// tieredLevel1Threshold is how many level-1 tables accumulate before
	// they compact into a single level-2 table.
	tieredLevel1Threshold = 5
	// tieredLevel2Threshold is how many level-2 tables accumulate before
	// they cascade, together with any existing level-3 table, into a
	// single replacement level-3 table.
	tieredLevel2Threshold = 5
)

// TieredManager keeps three levels of tables: new flushes land at level
// 1, level 1 compacts into a single level-2 table once it reaches
// tieredLevel1Threshold files, and level 2 cascades into the single
// level-3 table once it in turn reaches tieredLevel2Threshold files.
// There is never more than one level-3 table.
type TieredManager[K cmp.Ordered, V any] struct {
	dir    string
	level1 []string
	level2 []string
	level3 string // empty if none exists yet
	seq1   int
	seq2   int
	seq3   int // never reused, so a new level-3 table never collides with the one it replaces
}

// NewTieredManager opens the table manager for dir, picking up whatever
// tables already exist at each level.
func NewTieredManager[K cmp.Ordered, V any](dir string) (*TieredManager[K, V], error) {
	level1, err := listLevel(dir, extLevel1)
	if err != nil {
		return nil, err
	}
	level2, err := listLevel(dir, extLevel2)
	if err != nil {
		return nil, err
	}
	level3, err := listLevel(dir, extLevel3)
	if err != nil {
		return nil, err
	}
	m := &TieredManager[K, V]{dir: dir, level1: level1, level2: level2, seq1: nextSeq(level1), seq2: nextSeq(level2)}
	if len(level3) > 0 {
		m.level3 = level3[0]
		m.seq3 = nextSeq(level3)
	}
	return m, nil
}

func (m *TieredManager[K, V]) AddTable(entries []memtable.Entry[K, V]) error {
	path := nextTableName(m.dir, extLevel1, m.seq1)
	m.seq1++
	if err := writeTable[K, V](path, entries); err != nil {
		return err
	}
	m.level1 = append(m.level1, path)

	if len(m.level1) >= tieredLevel1Threshold {
		return m.compactToLevel2()
	}
	return nil
}

// compactToLevel2 merges every level-1 table into one new level-2 table.
// The replacement is written and fsynced before any level-1 input is
// removed, so a crash or write failure mid-compaction leaves the inputs
// intact rather than losing the keys they held.
func (m *TieredManager[K, V]) compactToLevel2() error {
	merged := make(map[K]base.Optional[V])
	inputs := m.level1
	for _, path := range inputs { // oldest to newest
		entries, err := readTable[K, V](path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			merged[e.Key] = e.Value
		}
	}

	path := nextTableName(m.dir, extLevel2, m.seq2)
	if err := writeTable[K, V](path, mapToSortedEntries(merged)); err != nil {
		return err
	}
	m.seq2++
	m.level2 = append(m.level2, path)
	m.level1 = nil

	for _, p := range inputs {
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("table: remove %s: %w", p, err)
		}
	}

	if len(m.level2) >= tieredLevel2Threshold {
		return m.compactToLevel3()
	}
	return nil
}

// compactToLevel3 merges the existing level-3 table (if any) and every
// level-2 table into one new level-3 table, written and fsynced before
// any input is removed, for the same reason compactToLevel2 orders its
// write before its removes.
func (m *TieredManager[K, V]) compactToLevel3() error {
	merged := make(map[K]base.Optional[V])
	oldLevel3 := m.level3
	if oldLevel3 != "" {
		entries, err := readTable[K, V](oldLevel3)
		if err != nil {
			return err
		}
		for _, e := range entries {
			merged[e.Key] = e.Value
		}
	}
	inputs := m.level2
	for _, path := range inputs { // oldest to newest, applied after level3
		entries, err := readTable[K, V](path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			merged[e.Key] = e.Value
		}
	}

	path := nextTableName(m.dir, extLevel3, m.seq3)
	if err := writeTable[K, V](path, mapToSortedEntries(merged)); err != nil {
		return err
	}
	m.seq3++
	m.level3 = path
	m.level2 = nil

	for _, p := range inputs {
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("table: remove %s: %w", p, err)
		}
	}
	if oldLevel3 != "" {
		if err := os.Remove(oldLevel3); err != nil {
			return fmt.Errorf("table: remove %s: %w", oldLevel3, err)
		}
	}
	return nil
}

func (m *TieredManager[K, V]) Read(key K) base.Optional[V] {
	for i := len(m.level1) - 1; i >= 0; i-- {
		if v, found, err := scanTable[K, V](m.level1[i], key); err == nil && found {
			return v
		}
	}
	for i := len(m.level2) - 1; i >= 0; i-- {
		if v, found, err := scanTable[K, V](m.level2[i], key); err == nil && found {
			return v
		}
	}
	if m.level3 != "" {
		if v, found, err := scanTable[K, V](m.level3, key); err == nil && found {
			return v
		}
	}
	return base.Optional[V]{}
}

func (m *TieredManager[K, V]) ShouldFlush(walSize int64, memtableLen int) bool {
	return shouldFlush(walSize, memtableLen)
}

func (m *TieredManager[K, V]) Close() error {
	return nil
}
