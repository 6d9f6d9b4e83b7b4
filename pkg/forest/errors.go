package forest

import "errors"

var (
	// ErrIO wraps any underlying filesystem failure.
	ErrIO = errors.New("forest: io failure")
	// ErrCodec wraps any wire-encoding failure.
	ErrCodec = errors.New("forest: codec failure")
	// ErrCorrupt is never returned to a caller: a corrupt record is
	// treated as the end of the valid prefix during replay, not as a
	// failure. It is kept as a sentinel for tests that want to assert
	// decode failures stay silent.
	ErrCorrupt = errors.New("forest: corrupt record")
	// ErrUnsupported is returned by Open when given an unrecognized
	// Variant.
	ErrUnsupported = errors.New("forest: unsupported variant")
)
