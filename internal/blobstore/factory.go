package blobstore

import (
	"context"
	"fmt"

	"ctx-go/internal/config"
)

// NewFromConfig creates a BlobStore implementation from the given
// tagged-union config.
func NewFromConfig(cfg config.BlobStoreConfig) (BlobStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryBlobStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem blob store requires fs_root to be set")
		}
		return NewFileSystemBlobStore(cfg.FSRoot)
	case "s3":
		return NewS3BlobStore(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
