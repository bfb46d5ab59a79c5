package metadatastore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/corekit"
	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
)

// membership pairs an artifact ID with its priority and insertion time
// within one pack, mirroring a pack_items row.
type membership struct {
	artifactID    string
	priority      int
	insertionTime time.Time
}

// MemoryMetadataStore is an in-memory MetadataStore, useful for tests.
// Safe for concurrent use.
type MemoryMetadataStore struct {
	mu        sync.Mutex
	blobs     blobstore.BlobStore
	clock     corekit.Clock
	ids       corekit.IDGenerator
	packs     map[string]*ctxmodel.Pack
	packNames map[string]string // name -> id
	artifacts map[string]*ctxmodel.Artifact
	members   map[string][]membership // packID -> memberships
	snapshots map[string]*ctxmodel.Snapshot
}

// NewMemoryMetadataStore creates an empty in-memory metadata store
// backed by the given blob store, using a real clock and UUID
// generator. Use NewMemoryMetadataStoreWithDeps for deterministic tests.
func NewMemoryMetadataStore(blobs blobstore.BlobStore) *MemoryMetadataStore {
	return NewMemoryMetadataStoreWithDeps(blobs, corekit.RealClock{}, corekit.UUIDGenerator{})
}

// NewMemoryMetadataStoreWithDeps creates an in-memory metadata store
// with an injected clock and ID generator, so tests can assert on exact
// timestamps and IDs.
func NewMemoryMetadataStoreWithDeps(blobs blobstore.BlobStore, clock corekit.Clock, ids corekit.IDGenerator) *MemoryMetadataStore {
	return &MemoryMetadataStore{
		blobs:     blobs,
		clock:     clock,
		ids:       ids,
		packs:     make(map[string]*ctxmodel.Pack),
		packNames: make(map[string]string),
		artifacts: make(map[string]*ctxmodel.Artifact),
		members:   make(map[string][]membership),
		snapshots: make(map[string]*ctxmodel.Snapshot),
	}
}

func (m *MemoryMetadataStore) CreatePack(_ context.Context, name string, policy ctxmodel.RenderPolicy) (*ctxmodel.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.packNames[name]; exists {
		return nil, ctxerr.Conflict("pack %q already exists", name)
	}

	p := &ctxmodel.Pack{
		ID:        m.ids.New(),
		Name:      name,
		Policy:    policy,
		CreatedAt: m.clock.Now(),
	}
	m.packs[p.ID] = p
	m.packNames[name] = p.ID
	return p, nil
}

func (m *MemoryMetadataStore) GetPack(_ context.Context, id string) (*ctxmodel.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.packs[id]
	if !ok {
		return nil, ctxerr.NotFound("pack %q", id)
	}
	return p, nil
}

func (m *MemoryMetadataStore) GetPackByName(_ context.Context, name string) (*ctxmodel.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.packNames[name]
	if !ok {
		return nil, ctxerr.NotFound("pack %q", name)
	}
	return m.packs[id], nil
}

func (m *MemoryMetadataStore) ListPacks(_ context.Context) ([]*ctxmodel.Pack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*ctxmodel.Pack, 0, len(m.packs))
	for _, p := range m.packs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryMetadataStore) DeletePack(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.packs[id]; ok {
		delete(m.packNames, p.Name)
	}
	delete(m.packs, id)
	delete(m.members, id)
	return nil
}

func (m *MemoryMetadataStore) AddArtifactWithContent(_ context.Context, packID string, artifact *ctxmodel.Artifact, content []byte, priority int) (*ctxmodel.Artifact, error) {
	hash := blobstore.HashBytes(content)
	if err := m.blobs.Put(hash, bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, &ctxerr.StorageFailureError{Detail: "storing blob content", Err: err}
	}
	artifact.ContentHash = hash
	artifact.ByteSize = int64(len(content))
	return m.insert(packID, artifact, priority), nil
}

func (m *MemoryMetadataStore) AddArtifactWithoutContent(_ context.Context, packID string, artifact *ctxmodel.Artifact, priority int) (*ctxmodel.Artifact, error) {
	return m.insert(packID, artifact, priority), nil
}

func (m *MemoryMetadataStore) insert(packID string, artifact *ctxmodel.Artifact, priority int) *ctxmodel.Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()

	if artifact.ID == "" {
		artifact.ID = m.ids.New()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = m.clock.Now()
	}
	m.artifacts[artifact.ID] = artifact
	m.members[packID] = append(m.members[packID], membership{
		artifactID:    artifact.ID,
		priority:      priority,
		insertionTime: m.clock.Now(),
	})
	return artifact
}

func (m *MemoryMetadataStore) RemoveArtifact(_ context.Context, packID, artifactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.members[packID]
	for i, mem := range items {
		if mem.artifactID == artifactID {
			m.members[packID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryMetadataStore) ListPackArtifactsOrdered(_ context.Context, packID string) ([]*ctxmodel.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := append([]membership(nil), m.members[packID]...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].priority != items[j].priority {
			return items[i].priority > items[j].priority
		}
		if !items[i].insertionTime.Equal(items[j].insertionTime) {
			return items[i].insertionTime.Before(items[j].insertionTime)
		}
		return items[i].artifactID < items[j].artifactID
	})

	out := make([]*ctxmodel.Artifact, len(items))
	for i, mem := range items {
		out[i] = m.artifacts[mem.artifactID]
	}
	return out, nil
}

func (m *MemoryMetadataStore) CreateSnapshot(_ context.Context, snap *ctxmodel.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.ID == "" {
		snap.ID = m.ids.New()
	}
	snap.CreatedAt = m.clock.Now()
	m.snapshots[snap.ID] = snap
	return nil
}

func (m *MemoryMetadataStore) GetSnapshot(_ context.Context, id string) (*ctxmodel.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.snapshots[id]
	if !ok {
		return nil, ctxerr.NotFound("snapshot %q", id)
	}
	return s, nil
}

func (m *MemoryMetadataStore) ListSnapshotsByPack(_ context.Context, packID string) ([]*ctxmodel.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*ctxmodel.Snapshot
	for _, s := range m.snapshots {
		if s.PackID == packID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryMetadataStore) CheckMigrations() error { return nil }

func (m *MemoryMetadataStore) Close() error { return nil }

var _ MetadataStore = (*MemoryMetadataStore)(nil)
