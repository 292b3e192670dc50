// Package kv defines the persistent key-value medium that chunk payloads
// are flushed to, plus local, in-memory, and wrapper implementations.
//
// Cloud-backed mediums live in subpackages (kv/minio, kv/s3) to keep their
// SDK dependencies out of the import graph of users that don't need them.
package kv
