package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ctx-go/internal/ctxmodel"
)

func TestCollectionHandler_CanHandle(t *testing.T) {
	h := &CollectionHandler{}
	if !h.CanHandle("md_dir:docs") {
		t.Error("expected md_dir: to be handled")
	}
	if !h.CanHandle("glob:**/*.go") {
		t.Error("expected glob: to be handled")
	}
	if h.CanHandle("file:foo.txt") {
		t.Error("did not expect file: to be handled")
	}
}

func TestCollectionHandler_ExpandMdDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "b.md"), "b")
	mustWrite(t, filepath.Join(dir, "a.md"), "a")
	mustWrite(t, filepath.Join(dir, "ignore.txt"), "x")
	mustWrite(t, filepath.Join(dir, ".env"), "secret")

	h := &CollectionHandler{}
	a, err := h.Parse(context.Background(), "md_dir:"+dir, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	members, err := h.Expand(context.Background(), a)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if filepath.Base(members[0].Path) != "a.md" || filepath.Base(members[1].Path) != "b.md" {
		t.Errorf("members not sorted: %v", members)
	}
	for _, m := range members {
		if m.Kind != ctxmodel.KindMarkdown {
			t.Errorf("member kind = %v, want KindMarkdown", m.Kind)
		}
	}
}

func TestCollectionHandler_ExpandMdDir_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.md"), "a")
	mustWrite(t, filepath.Join(dir, "b.md"), "b")
	mustWrite(t, filepath.Join(dir, "c.md"), "c")

	h := &CollectionHandler{}
	a, err := h.Parse(context.Background(), "md_dir:"+dir, Options{MaxFiles: 2})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	members, err := h.Expand(context.Background(), a)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2 (max_files)", len(members))
	}
}

func TestCollectionHandler_ExpandGlob(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "one.go"), "package x")
	mustWrite(t, filepath.Join(dir, "two.go"), "package x")
	mustWrite(t, filepath.Join(dir, "three.txt"), "nope")

	h := &CollectionHandler{}
	a, err := h.Parse(context.Background(), "glob:"+filepath.Join(dir, "*.go"), Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	members, err := h.Expand(context.Background(), a)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
}

func TestCollectionHandler_Load_Errors(t *testing.T) {
	h := &CollectionHandler{}
	a := &ctxmodel.Artifact{Kind: ctxmodel.KindCollectionMdDir, SourceURI: "md_dir:docs"}
	if _, err := h.Load(context.Background(), a); err == nil {
		t.Error("expected Load() to fail for a collection artifact")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
