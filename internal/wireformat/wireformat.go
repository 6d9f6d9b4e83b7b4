// Package wireformat is the engine's single point of contact with the
// on-disk binary encoding. Every other package asks it to encode or
// decode a value and never touches github.com/ugorji/go/codec directly.
package wireformat

import (
	"io"

	"github.com/ugorji/go/codec"
)

var handle = newHandle()

func newHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.Canonical = true
	return h
}

// NewEncoder wraps w in an encoder using the engine's shared handle.
func NewEncoder(w io.Writer) *codec.Encoder {
	return codec.NewEncoder(w, handle)
}

// NewDecoder wraps r in a decoder using the engine's shared handle. A
// codec.Decoder stops after exactly one decoded value and leaves r
// positioned at the next one, which is what makes the record stream
// self-delimiting without any length-prefix framing of our own.
func NewDecoder(r io.Reader) *codec.Decoder {
	return codec.NewDecoder(r, handle)
}
