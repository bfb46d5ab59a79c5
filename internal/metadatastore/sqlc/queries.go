package sqlc

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, letting Queries run
// against either a plain connection or an in-flight transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries is the typed query layer over a DBTX.
type Queries struct {
	db DBTX
}

// New wraps db (a *sql.DB or *sql.Tx) in a Queries.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries that runs against tx instead of the
// original connection, for use inside a transactional operation.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Packs

type InsertPackParams struct {
	ID           string
	Name         string
	BudgetTokens int64
	Ordering     string
}

const insertPack = `
INSERT INTO packs (id, name, budget_tokens, ordering, created_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
RETURNING id, name, budget_tokens, ordering, created_at
`

func (q *Queries) InsertPack(ctx context.Context, arg InsertPackParams) (Pack, error) {
	var p Pack
	err := q.db.QueryRowContext(ctx, insertPack, arg.ID, arg.Name, arg.BudgetTokens, arg.Ordering).
		Scan(&p.ID, &p.Name, &p.BudgetTokens, &p.Ordering, &p.CreatedAt)
	return p, err
}

const getPackByID = `SELECT id, name, budget_tokens, ordering, created_at FROM packs WHERE id = ?`

func (q *Queries) GetPackByID(ctx context.Context, id string) (Pack, error) {
	var p Pack
	err := q.db.QueryRowContext(ctx, getPackByID, id).
		Scan(&p.ID, &p.Name, &p.BudgetTokens, &p.Ordering, &p.CreatedAt)
	return p, err
}

const getPackByName = `SELECT id, name, budget_tokens, ordering, created_at FROM packs WHERE name = ?`

func (q *Queries) GetPackByName(ctx context.Context, name string) (Pack, error) {
	var p Pack
	err := q.db.QueryRowContext(ctx, getPackByName, name).
		Scan(&p.ID, &p.Name, &p.BudgetTokens, &p.Ordering, &p.CreatedAt)
	return p, err
}

const listPacks = `SELECT id, name, budget_tokens, ordering, created_at FROM packs ORDER BY created_at ASC`

func (q *Queries) ListPacks(ctx context.Context) ([]Pack, error) {
	rows, err := q.db.QueryContext(ctx, listPacks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pack
	for rows.Next() {
		var p Pack
		if err := rows.Scan(&p.ID, &p.Name, &p.BudgetTokens, &p.Ordering, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const deletePack = `DELETE FROM packs WHERE id = ?`

func (q *Queries) DeletePack(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deletePack, id)
	return err
}

// Artifacts

type InsertArtifactParams struct {
	ID            string
	Kind          string
	SourceURI     string
	Path          sql.NullString
	LineStart     sql.NullInt64
	LineEnd       sql.NullInt64
	InlineContent sql.NullString
	Title         sql.NullString
	Recursive     sql.NullBool
	MaxFiles      sql.NullInt64
	ExcludeJSON   sql.NullString
	Pattern       sql.NullString
	Base          sql.NullString
	Head          sql.NullString
	ContentHash   sql.NullString
	ByteSize      sql.NullInt64
	MimeType      sql.NullString
}

const artifactColumns = `id, kind, source_uri, path, line_start, line_end, inline_content, title,
	recursive, max_files, exclude_json, pattern, base, head, content_hash, byte_size, mime_type, created_at`

const insertArtifact = `
INSERT INTO artifacts (id, kind, source_uri, path, line_start, line_end, inline_content, title,
	recursive, max_files, exclude_json, pattern, base, head, content_hash, byte_size, mime_type, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
RETURNING ` + artifactColumns

func scanArtifact(row *sql.Row) (Artifact, error) {
	var a Artifact
	err := row.Scan(&a.ID, &a.Kind, &a.SourceURI, &a.Path, &a.LineStart, &a.LineEnd, &a.InlineContent,
		&a.Title, &a.Recursive, &a.MaxFiles, &a.ExcludeJSON, &a.Pattern, &a.Base, &a.Head,
		&a.ContentHash, &a.ByteSize, &a.MimeType, &a.CreatedAt)
	return a, err
}

func (q *Queries) InsertArtifact(ctx context.Context, arg InsertArtifactParams) (Artifact, error) {
	return scanArtifact(q.db.QueryRowContext(ctx, insertArtifact,
		arg.ID, arg.Kind, arg.SourceURI, arg.Path, arg.LineStart, arg.LineEnd, arg.InlineContent, arg.Title,
		arg.Recursive, arg.MaxFiles, arg.ExcludeJSON, arg.Pattern, arg.Base, arg.Head, arg.ContentHash,
		arg.ByteSize, arg.MimeType))
}

const getArtifactByID = `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = ?`

func (q *Queries) GetArtifactByID(ctx context.Context, id string) (Artifact, error) {
	return scanArtifact(q.db.QueryRowContext(ctx, getArtifactByID, id))
}

type UpdateArtifactContentParams struct {
	ContentHash sql.NullString
	ByteSize    sql.NullInt64
	MimeType    sql.NullString
	ID          string
}

const updateArtifactContent = `
UPDATE artifacts SET content_hash = ?, byte_size = ?, mime_type = ? WHERE id = ?
`

func (q *Queries) UpdateArtifactContent(ctx context.Context, arg UpdateArtifactContentParams) error {
	_, err := q.db.ExecContext(ctx, updateArtifactContent, arg.ContentHash, arg.ByteSize, arg.MimeType, arg.ID)
	return err
}

const deleteArtifact = `DELETE FROM artifacts WHERE id = ?`

func (q *Queries) DeleteArtifact(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteArtifact, id)
	return err
}

// Pack membership

type InsertPackItemParams struct {
	PackID     string
	ArtifactID string
	Priority   int64
}

const insertPackItem = `
INSERT INTO pack_items (pack_id, artifact_id, priority, insertion_time)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
`

func (q *Queries) InsertPackItem(ctx context.Context, arg InsertPackItemParams) error {
	_, err := q.db.ExecContext(ctx, insertPackItem, arg.PackID, arg.ArtifactID, arg.Priority)
	return err
}

const deletePackItem = `DELETE FROM pack_items WHERE pack_id = ? AND artifact_id = ?`

func (q *Queries) DeletePackItem(ctx context.Context, packID, artifactID string) error {
	_, err := q.db.ExecContext(ctx, deletePackItem, packID, artifactID)
	return err
}

// ListPackArtifactsOrdered returns every artifact belonging to a pack in
// the canonical order (priority DESC, insertion_time ASC, artifact_id
// ASC) that spec.md fixes as the sole ordering contract for pack
// membership.
const listPackArtifactsOrdered = `
SELECT a.id, a.kind, a.source_uri, a.path, a.line_start, a.line_end, a.inline_content, a.title,
	a.recursive, a.max_files, a.exclude_json, a.pattern, a.base, a.head, a.content_hash, a.byte_size,
	a.mime_type, a.created_at
FROM pack_items pi
JOIN artifacts a ON a.id = pi.artifact_id
WHERE pi.pack_id = ?
ORDER BY pi.priority DESC, pi.insertion_time ASC, a.id ASC
`

func (q *Queries) ListPackArtifactsOrdered(ctx context.Context, packID string) ([]Artifact, error) {
	rows, err := q.db.QueryContext(ctx, listPackArtifactsOrdered, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.ID, &a.Kind, &a.SourceURI, &a.Path, &a.LineStart, &a.LineEnd, &a.InlineContent,
			&a.Title, &a.Recursive, &a.MaxFiles, &a.ExcludeJSON, &a.Pattern, &a.Base, &a.Head,
			&a.ContentHash, &a.ByteSize, &a.MimeType, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Snapshots

type InsertSnapshotParams struct {
	ID                 string
	PackID             string
	RenderFingerprint  string
	PayloadFingerprint string
	TokenEstimate      int64
	Payload            string
}

const insertSnapshot = `
INSERT INTO snapshots (id, pack_id, created_at, render_fingerprint, payload_fingerprint, token_estimate, payload)
VALUES (?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?)
RETURNING id, pack_id, created_at, render_fingerprint, payload_fingerprint, token_estimate, payload
`

func scanSnapshot(row *sql.Row) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.PackID, &s.CreatedAt, &s.RenderFingerprint, &s.PayloadFingerprint, &s.TokenEstimate, &s.Payload)
	return s, err
}

func (q *Queries) InsertSnapshot(ctx context.Context, arg InsertSnapshotParams) (Snapshot, error) {
	return scanSnapshot(q.db.QueryRowContext(ctx, insertSnapshot,
		arg.ID, arg.PackID, arg.RenderFingerprint, arg.PayloadFingerprint, arg.TokenEstimate, arg.Payload))
}

const getSnapshotByID = `SELECT id, pack_id, created_at, render_fingerprint, payload_fingerprint, token_estimate, payload FROM snapshots WHERE id = ?`

func (q *Queries) GetSnapshotByID(ctx context.Context, id string) (Snapshot, error) {
	return scanSnapshot(q.db.QueryRowContext(ctx, getSnapshotByID, id))
}

const listSnapshotsByPack = `
SELECT id, pack_id, created_at, render_fingerprint, payload_fingerprint, token_estimate, payload
FROM snapshots WHERE pack_id = ? ORDER BY created_at DESC
`

func (q *Queries) ListSnapshotsByPack(ctx context.Context, packID string) ([]Snapshot, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshotsByPack, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.PackID, &s.CreatedAt, &s.RenderFingerprint, &s.PayloadFingerprint, &s.TokenEstimate, &s.Payload); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type InsertSnapshotItemParams struct {
	SnapshotID  string
	ArtifactID  string
	ContentHash string
	Position    int64
}

const insertSnapshotItem = `
INSERT INTO snapshot_items (snapshot_id, artifact_id, content_hash, position)
VALUES (?, ?, ?, ?)
`

func (q *Queries) InsertSnapshotItem(ctx context.Context, arg InsertSnapshotItemParams) error {
	_, err := q.db.ExecContext(ctx, insertSnapshotItem, arg.SnapshotID, arg.ArtifactID, arg.ContentHash, arg.Position)
	return err
}

const listSnapshotItemsOrdered = `
SELECT snapshot_id, artifact_id, content_hash, position FROM snapshot_items
WHERE snapshot_id = ? ORDER BY position ASC
`

func (q *Queries) ListSnapshotItemsOrdered(ctx context.Context, snapshotID string) ([]SnapshotItem, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshotItemsOrdered, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotItem
	for rows.Next() {
		var it SnapshotItem
		if err := rows.Scan(&it.SnapshotID, &it.ArtifactID, &it.ContentHash, &it.Position); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
