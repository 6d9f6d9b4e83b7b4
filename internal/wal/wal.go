// Package wal implements the engine's write-ahead log: an append-only,
// fsync-backed record of every write applied to a tree's memtable since
// the last flush.
package wal

import (
	"bufio"
	"fmt"
	"os"

	"lsmforest/internal/base"
	"lsmforest/internal/recordcodec"
)

// Log is a single write-ahead log file.
type Log[K any, V any] struct {
	path string
	file *os.File
}

// Open opens (creating if necessary) the log file at path.
func Open[K any, V any](path string) (*Log[K, V], error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", path, err)
	}
	return &Log[K, V]{path: path, file: f}, nil
}

// Append encodes one record and fsyncs the file before returning, so a
// successful Append is durable across a crash.
func (l *Log[K, V]) Append(key K, value base.Optional[V]) error {
	entry, err := recordcodec.NewLogEntry(key, value)
	if err != nil {
		return fmt.Errorf("wal: encode record: %w", err)
	}
	if err := entry.Encode(l.file); err != nil {
		return fmt.Errorf("wal: write %s: %w", l.path, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("wal: fsync %s: %w", l.path, err)
	}
	return nil
}

// Replay reads every valid record from the start of the log and invokes
// fn for each, in order, stopping silently at clean EOF or at the first
// corrupt record, whichever comes first.
func (l *Log[K, V]) Replay(fn func(key K, value base.Optional[V])) error {
	if _, err := l.file.Seek(0, 0); err != nil {
		return fmt.Errorf("wal: seek %s: %w", l.path, err)
	}
	r := bufio.NewReader(l.file)
	for {
		entry, status := recordcodec.DecodeLogEntry[K, V](r)
		switch status {
		case recordcodec.StatusOK:
			fn(entry.Key, entry.Value)
		default:
			return nil
		}
	}
}

// Truncate discards every record in the log, used right after a
// memtable flush makes them redundant.
func (l *Log[K, V]) Truncate() error {
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("wal: truncate %s: %w", l.path, err)
	}
	if _, err := l.file.Seek(0, 0); err != nil {
		return fmt.Errorf("wal: seek %s: %w", l.path, err)
	}
	return nil
}

// Size reports the current on-disk size of the log, used by a table
// manager to help decide whether a flush is due.
func (l *Log[K, V]) Size() (int64, error) {
	info, err := l.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("wal: stat %s: %w", l.path, err)
	}
	return info.Size(), nil
}

// Close closes the underlying file.
func (l *Log[K, V]) Close() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("wal: close %s: %w", l.path, err)
	}
	return nil
}
