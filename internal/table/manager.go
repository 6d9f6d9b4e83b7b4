// Package table implements the engine's pluggable table manager: the
// component that owns every immutable sorted run on disk for a tree,
// resolves reads against them, and decides when a flush is due. Six
// variants are provided, trading write amplification, read latency, and
// memory for one another in different ways.
package table

import (
	"bufio"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
	"lsmforest/internal/recordcodec"
)

// FlushThreshold is the number of distinct keys a memtable may hold
// before a table manager reports that a flush is due.
const FlushThreshold = 256

// WALSizeThreshold is the WAL file size, in bytes, past which a table
// manager reports that a flush is due even if FlushThreshold has not
// been reached.
const WALSizeThreshold = 4096

// shouldFlush is the shared should_flush policy every variant but the
// cache/bloom/compact/BCAT wrappers (which simply delegate to the manager
// they wrap) evaluates directly.
func shouldFlush(walSize int64, memtableLen int) bool {
	return memtableLen >= FlushThreshold || walSize >= WALSizeThreshold
}

// Manager owns every sorted run on disk for a tree.
type Manager[K cmp.Ordered, V any] interface {
	// AddTable persists a flushed memtable snapshot as a new table.
	AddTable(entries []memtable.Entry[K, V]) error
	// Read resolves key against every table this manager owns. The
	// returned Optional is invalid both when key was never written and
	// when the newest record for key is a tombstone: either way there is
	// no value to return to the caller.
	Read(key K) base.Optional[V]
	// ShouldFlush reports whether the WAL/memtable pair has grown large
	// enough to warrant a flush.
	ShouldFlush(walSize int64, memtableLen int) bool
	// Close releases any resources the manager holds open.
	Close() error
}

type tableExtension string

const (
	extLevel1 tableExtension = ".sst"
	extLevel2 tableExtension = ".sst2"
	extLevel3 tableExtension = ".sst3"
)

// listLevel returns every file in dir with the given extension, sorted
// by name so that ascending sequence numbers sort oldest to newest.
func listLevel(dir string, ext tableExtension) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("table: read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == string(ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func nextTableName(dir string, ext tableExtension, seq int) string {
	return filepath.Join(dir, fmt.Sprintf("sstable_%08d%s", seq, ext))
}

// nextSeq returns the sequence number after the newest of paths (as
// sorted by listLevel), or 0 when paths is empty, so a reopened manager
// never reuses or undercuts an existing table's name.
func nextSeq(paths []string) int {
	if len(paths) == 0 {
		return 0
	}
	var n int
	if _, err := fmt.Sscanf(filepath.Base(paths[len(paths)-1]), "sstable_%d", &n); err != nil {
		return len(paths)
	}
	return n + 1
}

func keyBytes[K any](key K) []byte {
	return []byte(fmt.Sprint(key))
}

// writeTable persists a sorted run of entries to a new file.
func writeTable[K cmp.Ordered, V any](path string, entries []memtable.Entry[K, V]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, e := range entries {
		te := recordcodec.TableEntry[K, V]{Key: e.Key, Value: e.Value}
		if err := te.Encode(w); err != nil {
			return fmt.Errorf("table: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("table: flush %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("table: fsync %s: %w", path, err)
	}
	return nil
}

// readTable decodes every entry in path, in file order.
func readTable[K cmp.Ordered, V any](path string) ([]memtable.Entry[K, V], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var out []memtable.Entry[K, V]
	for {
		entry, status := recordcodec.DecodeTableEntry[K, V](r)
		if status != recordcodec.StatusOK {
			return out, nil
		}
		out = append(out, memtable.Entry[K, V]{Key: entry.Key, Value: entry.Value})
	}
}

// scanTable performs a single linear pass over path looking for key,
// stopping at the first match (a table holds at most one record per
// key, since it is generated from a deduplicated memtable or merge).
func scanTable[K cmp.Ordered, V any](path string, key K) (base.Optional[V], bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return base.Optional[V]{}, false, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	for {
		entry, status := recordcodec.DecodeTableEntry[K, V](r)
		switch status {
		case recordcodec.StatusOK:
			switch cmp.Compare(entry.Key, key) {
			case 0:
				return entry.Value, true, nil
			case 1:
				// entries are written in ascending key order; scanning
				// past the search key means it is not in this table.
				return base.Optional[V]{}, false, nil
			}
		default:
			return base.Optional[V]{}, false, nil
		}
	}
}

// mapToSortedEntries flattens a merged key/value map into a key-sorted
// entry slice, the shape writeTable expects.
func mapToSortedEntries[K cmp.Ordered, V any](m map[K]base.Optional[V]) []memtable.Entry[K, V] {
	out := make([]memtable.Entry[K, V], 0, len(m))
	for k, v := range m {
		out = append(out, memtable.Entry[K, V]{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b memtable.Entry[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
