// Package blobstore provides content-addressed storage for artifact
// content, keyed by BLAKE3 hash. All operations use io.Reader/io.Writer
// for streaming so large files never need to be fully materialized in
// memory.
package blobstore

import "io"

// BlobStore is the interface every backend (filesystem, memory, S3)
// implements. Puts are idempotent: storing the same hash multiple times
// is always safe and cheap.
type BlobStore interface {
	// Put stores content under the given content hash. size is the
	// number of bytes that will be read from r.
	Put(hash string, r io.Reader, size int64) error

	// Get retrieves content by hash and writes it to w.
	Get(hash string, w io.Writer) error

	// Has reports whether content with the given hash is already
	// stored, without reading it.
	Has(hash string) (bool, error)

	// ValidateSetup verifies that the store is accessible and properly
	// configured.
	ValidateSetup() error
}
