// Package ctxmodel defines the data model for packs, artifacts, pack
// membership, and snapshots.
package ctxmodel

import "time"

// ArtifactKind identifies which variant of the tagged Artifact union is
// populated. Exactly one of the kind-specific fields on Artifact is
// meaningful for a given Kind.
type ArtifactKind string

const (
	KindFile            ArtifactKind = "file"
	KindFileRange       ArtifactKind = "file_range"
	KindText            ArtifactKind = "text"
	KindMarkdown        ArtifactKind = "markdown"
	KindCollectionMdDir ArtifactKind = "collection_md_dir"
	KindCollectionGlob  ArtifactKind = "collection_glob"
	KindGitDiff         ArtifactKind = "git_diff"
)

// Artifact is a single addressable unit of content a pack can include.
// It is a tagged union over Kind: only the fields relevant to Kind are
// populated, following the same discriminated-struct pattern the
// config package uses for storage backends.
type Artifact struct {
	ID        string
	Kind      ArtifactKind
	SourceURI string // canonical URI this artifact was parsed from

	// KindFile / KindFileRange
	Path      string
	LineStart int // 0-based inclusive; zero value means "whole file"
	LineEnd   int // 0-based inclusive; zero value means "whole file"

	// KindText
	InlineContent string

	// KindMarkdown
	// Path reused from above; Title is derived from the document's
	// first heading, if any.
	Title string

	// KindCollectionMdDir
	Recursive bool
	MaxFiles  int
	Exclude   []string

	// KindCollectionGlob
	Pattern string

	// KindGitDiff
	Base string
	Head string // empty means "working tree against Base"

	// Populated once content has been loaded and hashed.
	ContentHash string
	ByteSize    int64
	MimeType    string

	CreatedAt time.Time
}

// Pack is a named, user-curated collection of artifacts with a render
// policy applied when the pack is rendered.
type Pack struct {
	ID        string
	Name      string
	Policy    RenderPolicy
	CreatedAt time.Time
}

// RenderPolicy controls how a pack is rendered into a payload.
//
// Field order is alphabetical by JSON tag on purpose: spec.md requires
// the render policy to be serialized with sorted keys as part of the
// render fingerprint input, and a struct with only two fields already
// marshals in alphabetical order via encoding/json, so no generic
// canonicalization step is needed.
type RenderPolicy struct {
	BudgetTokens int    `json:"budget_tokens"`
	Ordering     string `json:"ordering"` // always "PriorityThenTime" today; reserved for future strategies
}

// DefaultRenderPolicy returns the policy used when a pack is created
// without an explicit override.
func DefaultRenderPolicy() RenderPolicy {
	return RenderPolicy{
		BudgetTokens: 8000,
		Ordering:     "PriorityThenTime",
	}
}

// PackMembership records that an Artifact belongs to a Pack, along with
// the priority and insertion time used for canonical ordering.
type PackMembership struct {
	PackID        string
	ArtifactID    string
	Priority      int
	InsertionTime time.Time
}

// Snapshot is an immutable record of a past render: the exact ordered
// artifact list it was produced from (SnapshotItems), so that replaying
// a snapshot is unaffected by later mutations to the live pack.
type Snapshot struct {
	ID               string
	PackID           string
	CreatedAt        time.Time
	RenderFingerprint string
	PayloadFingerprint string
	TokenEstimate    int
	Payload          string
	Items            []SnapshotItem
}

// SnapshotItem pins one artifact (by ID and content hash at the time of
// the snapshot) into a Snapshot's ordered membership list.
type SnapshotItem struct {
	ArtifactID  string
	ContentHash string
	Position    int
}
