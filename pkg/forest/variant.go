package forest

import (
	"cmp"
	"fmt"

	"lsmforest/internal/table"
)

// Variant selects which table manager implementation backs a Tree.
type Variant int

const (
	// VariantSimple stores every flush as its own file and scans
	// newest-first on read.
	VariantSimple Variant = iota
	// VariantSimpleCompact periodically merges accumulated files into
	// one.
	VariantSimpleCompact
	// VariantSimpleBloom guards reads with a bloom filter.
	VariantSimpleBloom
	// VariantSimpleCache fronts reads with an LRU cache.
	VariantSimpleCache
	// VariantTieredCompact cascades compaction across three levels.
	VariantTieredCompact
	// VariantBCAT composes a bloom filter and an LRU cache over
	// VariantTieredCompact.
	VariantBCAT
)

func newManager[K cmp.Ordered, V any](variant Variant, dir string) (table.Manager[K, V], error) {
	switch variant {
	case VariantSimple:
		return table.NewSimpleManager[K, V](dir)
	case VariantSimpleCompact:
		return table.NewCompactManager[K, V](dir)
	case VariantSimpleBloom:
		return table.NewBloomManager[K, V](dir)
	case VariantSimpleCache:
		return table.NewCacheManager[K, V](dir)
	case VariantTieredCompact:
		return table.NewTieredManager[K, V](dir)
	case VariantBCAT:
		return table.NewBCATManager[K, V](dir)
	default:
		return nil, fmt.Errorf("%w: variant %d", ErrUnsupported, variant)
	}
}
