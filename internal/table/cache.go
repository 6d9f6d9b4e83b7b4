package table

import (
	"cmp"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"lsmforest/internal/base"
	"lsmforest/internal/memtable"
)

// cacheSize is the number of entries CacheManager and BCATManager keep
// resident.
const cacheSize = 128

// CacheManager wraps SimpleManager with an LRU cache of recent reads, so
// repeated reads of hot keys skip disk entirely. A cache entry may be a
// tombstone or "not found" just as readily as a live value; either way
// it is cheaper to answer from memory than to rescan every table.
type CacheManager[K cmp.Ordered, V any] struct {
	tm    *SimpleManager[K, V]
	cache *lru.Cache[K, base.Optional[V]]
}

// NewCacheManager opens the table manager for dir with an empty cache.
func NewCacheManager[K cmp.Ordered, V any](dir string) (*CacheManager[K, V], error) {
	tm, err := NewSimpleManager[K, V](dir)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[K, base.Optional[V]](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("table: new cache: %w", err)
	}
	return &CacheManager[K, V]{tm: tm, cache: cache}, nil
}

func (m *CacheManager[K, V]) AddTable(entries []memtable.Entry[K, V]) error {
	for _, e := range entries {
		if m.cache.Contains(e.Key) {
			m.cache.Add(e.Key, e.Value)
		}
	}
	return m.tm.AddTable(entries)
}

func (m *CacheManager[K, V]) Read(key K) base.Optional[V] {
	if v, ok := m.cache.Get(key); ok {
		return v
	}
	v := m.tm.Read(key)
	m.cache.Add(key, v)
	return v
}

func (m *CacheManager[K, V]) ShouldFlush(walSize int64, memtableLen int) bool {
	return m.tm.ShouldFlush(walSize, memtableLen)
}

func (m *CacheManager[K, V]) Close() error {
	return m.tm.Close()
}
