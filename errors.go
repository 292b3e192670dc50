package chunkvec

import "errors"

var (
	// ErrIndexOutOfBounds is returned when an index is outside [0, len).
	// It marks a caller bug, never a transient condition.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrCapacityExhausted is returned by Push when the length is already
	// at the representable maximum (math.MaxUint32).
	ErrCapacityExhausted = errors.New("vector capacity exhausted")

	// ErrInconsistentState is returned when a chunk that must exist for an
	// in-range index is missing or malformed in storage. It signals that
	// the medium was mutated outside the vector's control or corrupted by
	// an earlier bug; it is never a normal not-found case.
	ErrInconsistentState = errors.New("inconsistent storage state")
)
