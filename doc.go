// Package chunkvec provides a growable, index-addressable vector whose
// elements are persisted to a key-value medium in fixed-size chunks and
// loaded lazily.
//
// Grouping elements into chunks amortizes the per-access cost of the
// medium across multiple elements: fewer storage operations, at the price
// of writing a whole chunk even when a single element changed. All loads
// and mutations are cached in memory; during a vector's lifetime the
// medium is read at most once per chunk, and written at most once per
// chunk per flush.
//
// # Quick Start
//
//	ctx := context.Background()
//	vec, _ := chunkvec.New[int]("scores", kv.NewMemoryStore())
//
//	_ = vec.Push(ctx, 3)
//	_ = vec.Push(ctx, 7)
//
//	v, _ := vec.Get(ctx, 1) // *v == 7
//
//	_ = vec.Close(ctx) // persists buffered chunks
//
// Durable mediums live in the kv package tree: kv.NewLocalStore for the
// local filesystem, kv/minio and kv/s3 for object storage, kv.CachingStore
// and kv.RateLimitStore as wrappers for remote backends.
//
// # Lifecycle
//
// Mutations are buffered until Flush (or Close). Go has no guaranteed
// finalizers, so callers must call Close before discarding a vector;
// anything not flushed is lost. A crash before flush therefore discards
// all buffered mutations and leaves the persisted state at the previous
// flush point.
//
// Lengths and indices are uint32 rather than int for consistent behavior
// across targets and a stable serialized form.
package chunkvec
