package metadatastore

import (
	"fmt"
	"path/filepath"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/config"
)

// NewFromConfig creates a MetadataStore from the given tagged-union
// config, running pending migrations for the sqlite backend.
func NewFromConfig(cfg config.MetadataStoreConfig, hostID string, blobs blobstore.BlobStore) (MetadataStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryMetadataStore(blobs), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite metadata store")
		}
		dbPath := filepath.Join(cfg.DataDir, hostID+".db")
		store, err := NewSQLiteMetadataStore(dbPath, blobs)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("applying migrations: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown metadata store type: %s", cfg.Type)
	}
}
