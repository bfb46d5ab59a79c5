package testutil

import (
	"ctx-go/internal/blobstore"
	"ctx-go/internal/metadatastore"
)

// NewTestBlobStore creates an in-memory blob store for tests.
func NewTestBlobStore() blobstore.BlobStore {
	return blobstore.NewMemoryBlobStore()
}

// NewTestMetadataStore creates an in-memory metadata store backed by
// blobs, using a real clock and UUID generator.
func NewTestMetadataStore(blobs blobstore.BlobStore) metadatastore.MetadataStore {
	return metadatastore.NewMemoryMetadataStore(blobs)
}

// NewTestMetadataStoreWithDeps creates an in-memory metadata store with
// an injected clock and ID generator, so a test can assert on exact
// pack, artifact, and snapshot IDs and timestamps.
func NewTestMetadataStoreWithDeps(blobs blobstore.BlobStore, clock *StubClock, ids *StubIDGenerator) metadatastore.MetadataStore {
	return metadatastore.NewMemoryMetadataStoreWithDeps(blobs, clock, ids)
}
