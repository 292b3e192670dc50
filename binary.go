package chunkvec

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/chunkvec/kv"
)

// Header layout (little-endian):
// [Len:4][NamespaceLen:4][Namespace:N][ChunkCapacity:4]
//
// Chunk contents are never part of the serialized form; a deserialized
// vector re-resolves them lazily from the medium under the same namespace.

// MarshalBinary implements encoding.BinaryMarshaler.
//
// It captures only the length and the store's addressing state, so a
// vector can be embedded as a field of a larger persisted structure.
func (v *Vector[T]) MarshalBinary() ([]byte, error) {
	namespace := v.store.Namespace()

	buf := make([]byte, 0, 12+len(namespace))
	buf = binary.LittleEndian.AppendUint32(buf, v.length)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(namespace))) //nolint:gosec
	buf = append(buf, namespace...)
	buf = binary.LittleEndian.AppendUint32(buf, v.capacity)
	return buf, nil
}

// UnmarshalVector reconstructs a vector from a header produced by
// MarshalBinary, bound to the given medium. Chunks are not read; they
// resolve lazily on first access.
//
// The chunk capacity is taken from the header; a WithChunkCapacity option
// is ignored. Codec and logger options apply as in New.
func UnmarshalVector[T any](data []byte, medium kv.Store, opts ...Option) (*Vector[T], error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("chunkvec: short header: %d bytes", len(data))
	}

	length := binary.LittleEndian.Uint32(data[0:])
	nsLen := binary.LittleEndian.Uint32(data[4:])

	rest := data[8:]
	if nsLen > uint32(len(rest)) || uint32(len(rest))-nsLen < 4 { //nolint:gosec
		return nil, fmt.Errorf("chunkvec: short header: %d bytes", len(data))
	}
	namespace := string(rest[:nsLen])
	capacity := binary.LittleEndian.Uint32(rest[nsLen:])

	vec, err := New[T](namespace, medium, append(opts, WithChunkCapacity(capacity))...)
	if err != nil {
		return nil, err
	}
	vec.length = length
	return vec, nil
}
