package chunkvec

import (
	"github.com/hupe1980/chunkvec/codec"
)

// DefaultChunkCapacity is the chunk capacity used when WithChunkCapacity is
// not given. Larger chunks amortize per-access medium cost better but waste
// more bandwidth per single-element mutation.
const DefaultChunkCapacity = 16

type options struct {
	chunkCapacity uint32
	codec         codec.Codec
	logger        *Logger
}

// Option configures vector construction.
type Option func(*options)

// WithChunkCapacity configures the number of elements per chunk (N).
// Must be >= 1.
//
// The capacity is part of the addressing scheme: reopening a populated
// namespace with a different capacity scrambles the chunk contents. Stick
// to one capacity per namespace; the serialized header records it.
func WithChunkCapacity(n uint32) Option {
	return func(o *options) {
		o.chunkCapacity = n
	}
}

// WithCodec configures the codec used to encode and decode chunk payloads.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging. The default discards all output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
