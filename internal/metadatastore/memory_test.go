package metadatastore_test

import (
	"context"
	"testing"
	"time"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/ctxmodel"
	"ctx-go/internal/metadatastore"
	"ctx-go/internal/testutil"
)

func newTestMemoryStore() (*metadatastore.MemoryMetadataStore, *testutil.StubClock, *testutil.StubIDGenerator) {
	blobs := blobstore.NewMemoryBlobStore()
	clock := testutil.FixedClock()
	ids := testutil.NewStubIDGenerator()
	return metadatastore.NewMemoryMetadataStoreWithDeps(blobs, clock, ids), clock, ids
}

func TestMemoryMetadataStore_CreatePack_DeterministicIDAndTimestamp(t *testing.T) {
	store, clock, _ := newTestMemoryStore()
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, "demo", ctxmodel.DefaultRenderPolicy())
	if err != nil {
		t.Fatalf("CreatePack() error = %v", err)
	}

	if pack.ID != "id-1" {
		t.Errorf("ID = %q, want %q", pack.ID, "id-1")
	}
	if !pack.CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", pack.CreatedAt, clock.Now())
	}
}

func TestMemoryMetadataStore_CreatePack_DuplicateNameConflict(t *testing.T) {
	store, _, _ := newTestMemoryStore()
	ctx := context.Background()

	if _, err := store.CreatePack(ctx, "demo", ctxmodel.DefaultRenderPolicy()); err != nil {
		t.Fatalf("CreatePack() error = %v", err)
	}
	if _, err := store.CreatePack(ctx, "demo", ctxmodel.DefaultRenderPolicy()); err == nil {
		t.Fatal("CreatePack() expected conflict error on duplicate name")
	}
}

func TestMemoryMetadataStore_ListPackArtifactsOrdered_ByPriorityThenInsertion(t *testing.T) {
	store, clock, _ := newTestMemoryStore()
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, "demo", ctxmodel.DefaultRenderPolicy())
	if err != nil {
		t.Fatalf("CreatePack() error = %v", err)
	}

	low := &ctxmodel.Artifact{Kind: ctxmodel.KindText, SourceURI: "text:low"}
	if _, err := store.AddArtifactWithContent(ctx, pack.ID, low, []byte("low"), 1); err != nil {
		t.Fatalf("AddArtifactWithContent(low) error = %v", err)
	}

	clock.Advance(time.Second)

	high := &ctxmodel.Artifact{Kind: ctxmodel.KindText, SourceURI: "text:high"}
	if _, err := store.AddArtifactWithContent(ctx, pack.ID, high, []byte("high"), 10); err != nil {
		t.Fatalf("AddArtifactWithContent(high) error = %v", err)
	}

	ordered, err := store.ListPackArtifactsOrdered(ctx, pack.ID)
	if err != nil {
		t.Fatalf("ListPackArtifactsOrdered() error = %v", err)
	}
	if len(ordered) != 2 {
		t.Fatalf("len(ordered) = %d, want 2", len(ordered))
	}
	if ordered[0].SourceURI != "text:high" {
		t.Errorf("ordered[0] = %q, want the higher-priority artifact first", ordered[0].SourceURI)
	}
}

func TestMemoryMetadataStore_RemoveArtifact(t *testing.T) {
	store, _, _ := newTestMemoryStore()
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, "demo", ctxmodel.DefaultRenderPolicy())
	if err != nil {
		t.Fatalf("CreatePack() error = %v", err)
	}

	artifact := &ctxmodel.Artifact{Kind: ctxmodel.KindText, SourceURI: "text:hello"}
	added, err := store.AddArtifactWithContent(ctx, pack.ID, artifact, []byte("hello"), 0)
	if err != nil {
		t.Fatalf("AddArtifactWithContent() error = %v", err)
	}

	if err := store.RemoveArtifact(ctx, pack.ID, added.ID); err != nil {
		t.Fatalf("RemoveArtifact() error = %v", err)
	}

	ordered, err := store.ListPackArtifactsOrdered(ctx, pack.ID)
	if err != nil {
		t.Fatalf("ListPackArtifactsOrdered() error = %v", err)
	}
	if len(ordered) != 0 {
		t.Errorf("len(ordered) after removal = %d, want 0", len(ordered))
	}
}

func TestMemoryMetadataStore_CreateSnapshot_AssignsIDAndTimestamp(t *testing.T) {
	store, clock, ids := newTestMemoryStore()
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, "demo", ctxmodel.DefaultRenderPolicy())
	if err != nil {
		t.Fatalf("CreatePack() error = %v", err)
	}
	_ = ids // pack creation already consumed id-1; snapshot gets the next one

	snap := &ctxmodel.Snapshot{PackID: pack.ID, RenderFingerprint: "fp"}
	if err := store.CreateSnapshot(ctx, snap); err != nil {
		t.Fatalf("CreateSnapshot() error = %v", err)
	}

	if snap.ID != "id-2" {
		t.Errorf("ID = %q, want %q", snap.ID, "id-2")
	}
	if !snap.CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", snap.CreatedAt, clock.Now())
	}

	got, err := store.GetSnapshot(ctx, snap.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.PackID != pack.ID {
		t.Errorf("GetSnapshot() PackID = %q, want %q", got.PackID, pack.ID)
	}
}
