package metadatastore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/corekit"
	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
	"ctx-go/internal/metadatastore/migrations"
	"ctx-go/internal/metadatastore/sqlc"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteMetadataStore implements MetadataStore using SQLite for
// metadata and a BlobStore for artifact content.
type SQLiteMetadataStore struct {
	db      *sql.DB
	queries *sqlc.Queries
	blobs   blobstore.BlobStore
	ids     corekit.IDGenerator
	path    string
}

// NewSQLiteMetadataStore creates a new SQLite-backed metadata store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteMetadataStore(path string, blobs blobstore.BlobStore) (*SQLiteMetadataStore, error) {
	return NewSQLiteMetadataStoreWithDeps(path, blobs, corekit.UUIDGenerator{})
}

// NewSQLiteMetadataStoreWithDeps creates a SQLite-backed metadata store
// with an injected ID generator, so tests can assert on exact IDs.
// Row timestamps come from the database's own defaults, not a Clock.
func NewSQLiteMetadataStoreWithDeps(path string, blobs blobstore.BlobStore, ids corekit.IDGenerator) (*SQLiteMetadataStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteMetadataStore{
		db:      db,
		queries: sqlc.New(db),
		blobs:   blobs,
		ids:     ids,
		path:    path,
	}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the schema relies on.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteMetadataStore) CreatePack(ctx context.Context, name string, policy ctxmodel.RenderPolicy) (*ctxmodel.Pack, error) {
	row, err := s.queries.InsertPack(ctx, sqlc.InsertPackParams{
		ID:           s.ids.New(),
		Name:         name,
		BudgetTokens: int64(policy.BudgetTokens),
		Ordering:     policy.Ordering,
	})
	if err != nil {
		if isUniqueConstraintErr(err) {
			return nil, ctxerr.Conflict("pack %q already exists", name)
		}
		return nil, &ctxerr.StorageFailureError{Detail: "creating pack", Err: err}
	}
	return packFromRow(row), nil
}

func (s *SQLiteMetadataStore) GetPack(ctx context.Context, id string) (*ctxmodel.Pack, error) {
	row, err := s.queries.GetPackByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ctxerr.NotFound("pack %q", id)
		}
		return nil, &ctxerr.StorageFailureError{Detail: "getting pack", Err: err}
	}
	return packFromRow(row), nil
}

func (s *SQLiteMetadataStore) GetPackByName(ctx context.Context, name string) (*ctxmodel.Pack, error) {
	row, err := s.queries.GetPackByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ctxerr.NotFound("pack %q", name)
		}
		return nil, &ctxerr.StorageFailureError{Detail: "getting pack by name", Err: err}
	}
	return packFromRow(row), nil
}

func (s *SQLiteMetadataStore) ListPacks(ctx context.Context) ([]*ctxmodel.Pack, error) {
	rows, err := s.queries.ListPacks(ctx)
	if err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "listing packs", Err: err}
	}
	out := make([]*ctxmodel.Pack, len(rows))
	for i, row := range rows {
		out[i] = packFromRow(row)
	}
	return out, nil
}

func (s *SQLiteMetadataStore) DeletePack(ctx context.Context, id string) error {
	if err := s.queries.DeletePack(ctx, id); err != nil {
		return &ctxerr.StorageFailureError{Detail: "deleting pack", Err: err}
	}
	return nil
}

// AddArtifactWithContent puts content in the blob store first (cheap
// and idempotent), then inserts the artifact and membership rows in a
// single transaction. If the transaction fails, the blob put is not
// undone — it is harmless because blobs are content-addressed and an
// unreferenced blob costs nothing but disk space.
func (s *SQLiteMetadataStore) AddArtifactWithContent(ctx context.Context, packID string, artifact *ctxmodel.Artifact, content []byte, priority int) (*ctxmodel.Artifact, error) {
	hash := blobstore.HashBytes(content)
	if err := s.blobs.Put(hash, bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "storing blob content", Err: err}
	}

	artifact.ContentHash = hash
	artifact.ByteSize = int64(len(content))

	return s.insertArtifactAndMembership(ctx, packID, artifact, priority)
}

// AddArtifactWithoutContent inserts an artifact with no content hash
// yet (collections, git diffs), and its pack membership, atomically.
func (s *SQLiteMetadataStore) AddArtifactWithoutContent(ctx context.Context, packID string, artifact *ctxmodel.Artifact, priority int) (*ctxmodel.Artifact, error) {
	return s.insertArtifactAndMembership(ctx, packID, artifact, priority)
}

func (s *SQLiteMetadataStore) insertArtifactAndMembership(ctx context.Context, packID string, artifact *ctxmodel.Artifact, priority int) (*ctxmodel.Artifact, error) {
	if artifact.ID == "" {
		artifact.ID = s.ids.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "starting transaction", Err: err}
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	params, err := artifactToInsertParams(artifact)
	if err != nil {
		return nil, fmt.Errorf("preparing artifact row: %w", err)
	}

	row, err := qtx.InsertArtifact(ctx, params)
	if err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "inserting artifact", Err: err}
	}

	if err := qtx.InsertPackItem(ctx, sqlc.InsertPackItemParams{
		PackID:     packID,
		ArtifactID: row.ID,
		Priority:   int64(priority),
	}); err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "inserting pack membership", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "committing transaction", Err: err}
	}

	return artifactFromRow(row)
}

func (s *SQLiteMetadataStore) RemoveArtifact(ctx context.Context, packID, artifactID string) error {
	if err := s.queries.DeletePackItem(ctx, packID, artifactID); err != nil {
		return &ctxerr.StorageFailureError{Detail: "removing artifact from pack", Err: err}
	}
	return nil
}

func (s *SQLiteMetadataStore) ListPackArtifactsOrdered(ctx context.Context, packID string) ([]*ctxmodel.Artifact, error) {
	rows, err := s.queries.ListPackArtifactsOrdered(ctx, packID)
	if err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "listing pack artifacts", Err: err}
	}

	out := make([]*ctxmodel.Artifact, len(rows))
	for i, row := range rows {
		a, err := artifactFromRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func (s *SQLiteMetadataStore) CreateSnapshot(ctx context.Context, snap *ctxmodel.Snapshot) error {
	if snap.ID == "" {
		snap.ID = s.ids.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ctxerr.StorageFailureError{Detail: "starting transaction", Err: err}
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	row, err := qtx.InsertSnapshot(ctx, sqlc.InsertSnapshotParams{
		ID:                 snap.ID,
		PackID:             snap.PackID,
		RenderFingerprint:  snap.RenderFingerprint,
		PayloadFingerprint: snap.PayloadFingerprint,
		TokenEstimate:      int64(snap.TokenEstimate),
		Payload:            snap.Payload,
	})
	if err != nil {
		return &ctxerr.StorageFailureError{Detail: "inserting snapshot", Err: err}
	}
	snap.CreatedAt = row.CreatedAt

	for i, item := range snap.Items {
		if err := qtx.InsertSnapshotItem(ctx, sqlc.InsertSnapshotItemParams{
			SnapshotID:  row.ID,
			ArtifactID:  item.ArtifactID,
			ContentHash: item.ContentHash,
			Position:    int64(i),
		}); err != nil {
			return &ctxerr.StorageFailureError{Detail: "inserting snapshot item", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ctxerr.StorageFailureError{Detail: "committing transaction", Err: err}
	}

	return nil
}

func (s *SQLiteMetadataStore) GetSnapshot(ctx context.Context, id string) (*ctxmodel.Snapshot, error) {
	row, err := s.queries.GetSnapshotByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ctxerr.NotFound("snapshot %q", id)
		}
		return nil, &ctxerr.StorageFailureError{Detail: "getting snapshot", Err: err}
	}

	items, err := s.queries.ListSnapshotItemsOrdered(ctx, id)
	if err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "listing snapshot items", Err: err}
	}

	return snapshotFromRow(row, items), nil
}

func (s *SQLiteMetadataStore) ListSnapshotsByPack(ctx context.Context, packID string) ([]*ctxmodel.Snapshot, error) {
	rows, err := s.queries.ListSnapshotsByPack(ctx, packID)
	if err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "listing snapshots", Err: err}
	}

	out := make([]*ctxmodel.Snapshot, len(rows))
	for i, row := range rows {
		items, err := s.queries.ListSnapshotItemsOrdered(ctx, row.ID)
		if err != nil {
			return nil, &ctxerr.StorageFailureError{Detail: "listing snapshot items", Err: err}
		}
		out[i] = snapshotFromRow(row, items)
	}
	return out, nil
}

func (s *SQLiteMetadataStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate applies all pending schema migrations.
func (s *SQLiteMetadataStore) Migrate() error {
	return migrations.MigrateUp(s.db)
}

func (s *SQLiteMetadataStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func snapshotFromRow(row sqlc.Snapshot, items []sqlc.SnapshotItem) *ctxmodel.Snapshot {
	snapItems := make([]ctxmodel.SnapshotItem, len(items))
	for i, it := range items {
		snapItems[i] = ctxmodel.SnapshotItem{
			ArtifactID:  it.ArtifactID,
			ContentHash: it.ContentHash,
			Position:    int(it.Position),
		}
	}
	return &ctxmodel.Snapshot{
		ID:                 row.ID,
		PackID:             row.PackID,
		CreatedAt:          row.CreatedAt,
		RenderFingerprint:  row.RenderFingerprint,
		PayloadFingerprint: row.PayloadFingerprint,
		TokenEstimate:      int(row.TokenEstimate),
		Payload:            row.Payload,
		Items:              snapItems,
	}
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ MetadataStore = (*SQLiteMetadataStore)(nil)
