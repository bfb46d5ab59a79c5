// Package metadatastore persists packs, artifacts, pack membership, and
// snapshots. The SQLite-backed implementation owns the transactional
// boundary for AddArtifactWithContent: spec.md requires that a blob
// store put, an artifact row insert, and a pack membership row insert
// either all happen or none do.
package metadatastore

import (
	"context"

	"ctx-go/internal/ctxmodel"
)

// MetadataStore is the interface every backend (SQLite, in-memory)
// implements.
type MetadataStore interface {
	// CreatePack creates a new pack with the given name and policy.
	CreatePack(ctx context.Context, name string, policy ctxmodel.RenderPolicy) (*ctxmodel.Pack, error)

	// GetPack returns a pack by ID.
	GetPack(ctx context.Context, id string) (*ctxmodel.Pack, error)

	// GetPackByName returns a pack by its unique name.
	GetPackByName(ctx context.Context, name string) (*ctxmodel.Pack, error)

	// ListPacks returns every pack, oldest first.
	ListPacks(ctx context.Context) ([]*ctxmodel.Pack, error)

	// DeletePack deletes a pack and its membership rows. Artifacts that
	// belonged only to this pack are left in place — artifacts are
	// independent, content-addressed entities that may be referenced by
	// more than one pack.
	DeletePack(ctx context.Context, id string) error

	// AddArtifactWithContent stores content in the blob store, inserts
	// the artifact row, and inserts the pack membership row, all as one
	// atomic operation: either every step succeeds or none of the
	// database rows are created. The blob put happens first and is not
	// rolled back on a later database failure — it is idempotent and
	// content-addressed, so an orphaned blob is harmless.
	AddArtifactWithContent(ctx context.Context, packID string, artifact *ctxmodel.Artifact, content []byte, priority int) (*ctxmodel.Artifact, error)

	// AddArtifactWithoutContent inserts an artifact row (for kinds that
	// have no content to hash until render time, such as collections and
	// git diffs) and its pack membership row, atomically.
	AddArtifactWithoutContent(ctx context.Context, packID string, artifact *ctxmodel.Artifact, priority int) (*ctxmodel.Artifact, error)

	// RemoveArtifact deletes the pack membership row for an artifact.
	// The artifact row and any blob content are left untouched.
	RemoveArtifact(ctx context.Context, packID, artifactID string) error

	// ListPackArtifactsOrdered returns every artifact in a pack in the
	// canonical order: priority DESC, insertion_time ASC, artifact_id
	// ASC.
	ListPackArtifactsOrdered(ctx context.Context, packID string) ([]*ctxmodel.Artifact, error)

	// CreateSnapshot persists a snapshot and its ordered item list
	// atomically.
	CreateSnapshot(ctx context.Context, snap *ctxmodel.Snapshot) error

	// GetSnapshot returns a snapshot by ID, with its items populated.
	GetSnapshot(ctx context.Context, id string) (*ctxmodel.Snapshot, error)

	// ListSnapshotsByPack returns every snapshot of a pack, newest
	// first.
	ListSnapshotsByPack(ctx context.Context, packID string) ([]*ctxmodel.Snapshot, error)

	// CheckMigrations verifies the database schema is up to date.
	CheckMigrations() error

	// Close closes the store's resources.
	Close() error
}
