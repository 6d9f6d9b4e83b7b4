// Package forest implements an embedded, ordered key-value store built
// on a log-structured merge design. Writes land in a write-ahead log and
// an in-memory memtable; once the memtable grows past a threshold its
// contents are flushed to an immutable sorted table on disk, and the log
// is truncated. Reads check the memtable first, falling back to the
// table manager for anything already flushed.
package forest

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
	"lsmforest/internal/table"
	"lsmforest/internal/wal"
)

const (
	lockFileName = "forest.lock"
	walFileName  = "wal.log"
)

// Tree is a single embedded key-value store rooted at one directory.
// Only one process may hold a Tree open on a given directory at a time.
type Tree[K cmp.Ordered, V any] struct {
	// walMu, memMu, and tableMu are always acquired in this order —
	// WAL, then memtable, then table manager — never the reverse.
	walMu   sync.Mutex
	memMu   sync.RWMutex
	tableMu sync.Mutex

	lockFile *os.File
	log      *wal.Log[K, V]
	mem      *memtable.Memtable[K, V]
	tables   table.Manager[K, V]
}

// Open opens (creating if necessary) a tree rooted at dir, replaying its
// write-ahead log to recover any writes that were never flushed.
func Open[K cmp.Ordered, V any](dir string, opts ...Option) (t *Tree[K, V], err error) {
	cfg := &config{variant: VariantSimple}
	for _, o := range opts {
		o.apply(cfg)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create directory %s: %v", ErrIO, dir, err)
	}

	lockFile, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: create lock file: %v", ErrIO, err)
	}
	defer func() {
		if t == nil {
			_ = lockFile.Close()
		}
	}()
	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return nil, fmt.Errorf("%w: lock directory %s: %v", ErrIO, dir, err)
	}

	log, err := wal.Open[K, V](filepath.Join(dir, walFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() {
		if t == nil {
			_ = log.Close()
		}
	}()

	mem := memtable.New[K, V]()
	if err := log.Replay(func(key K, value base.Optional[V]) {
		mem.Put(key, value)
	}); err != nil {
		return nil, fmt.Errorf("%w: replay wal: %v", ErrIO, err)
	}

	mgr, err := newManager[K, V](cfg.variant, dir)
	if err != nil {
		return nil, err
	}

	return &Tree[K, V]{
		lockFile: lockFile,
		log:      log,
		mem:      mem,
		tables:   mgr,
	}, nil
}

// Get returns the value associated with key, and whether it was found.
// A value shadowed by a later delete is reported as not found.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	t.memMu.RLock()
	v, ok := t.mem.Get(key)
	t.memMu.RUnlock()
	if ok {
		return v.Value, v.Valid
	}

	t.tableMu.Lock()
	found := t.tables.Read(key)
	t.tableMu.Unlock()
	return found.Value, found.Valid
}

// Put durably writes value for key.
func (t *Tree[K, V]) Put(key K, value V) error {
	return t.write(key, base.Some(value))
}

// Delete removes key, leaving a tombstone that shadows any older,
// already-flushed value on subsequent reads.
func (t *Tree[K, V]) Delete(key K) error {
	return t.write(key, base.None[V]())
}

// write is the shared path for Put and Delete. It appends to the WAL and
// applies the write to the memtable under the WAL and memtable locks,
// then re-takes the memtable lock together with the table-manager lock
// and checks whether a flush is due. The WAL lock is held throughout, so
// no other writer can interleave between the insert and the flush
// decision.
func (t *Tree[K, V]) write(key K, value base.Optional[V]) error {
	t.walMu.Lock()
	defer t.walMu.Unlock()

	t.memMu.Lock()
	if err := t.log.Append(key, value); err != nil {
		t.memMu.Unlock()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	t.mem.Put(key, value)
	t.memMu.Unlock()

	t.memMu.Lock()
	defer t.memMu.Unlock()
	t.tableMu.Lock()
	defer t.tableMu.Unlock()

	walSize, err := t.log.Size()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if t.tables.ShouldFlush(walSize, t.mem.Len()) {
		return t.flushLocked()
	}
	return nil
}

// flushLocked hands the memtable's contents to the table manager as a
// new sorted run and truncates the WAL. Callers must hold walMu, memMu,
// and tableMu.
func (t *Tree[K, V]) flushLocked() error {
	snapshot := t.mem.Snapshot()
	if err := t.tables.AddTable(snapshot); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrIO, err)
	}
	t.mem.Clear()
	if err := t.log.Truncate(); err != nil {
		return fmt.Errorf("%w: truncate wal: %v", ErrIO, err)
	}
	return nil
}

// Close releases every resource the tree holds, aggregating every
// failure rather than stopping at the first.
func (t *Tree[K, V]) Close() error {
	var result *multierror.Error
	if err := t.tables.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close tables: %w", err))
	}
	if err := t.log.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close wal: %w", err))
	}
	if err := t.lockFile.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close lock file: %w", err))
	}
	return result.ErrorOrNil()
}
