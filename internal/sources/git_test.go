package sources

import (
	"context"
	"testing"
)

func TestParseDiffSpec(t *testing.T) {
	cases := []struct {
		spec     string
		wantBase string
		wantHead string
	}{
		{"", "HEAD", ""},
		{"--base=main", "main", ""},
		{"--base=main --head=feature-branch", "main", "feature-branch"},
	}
	for _, c := range cases {
		base, head := parseDiffSpec(c.spec)
		if base != c.wantBase || head != c.wantHead {
			t.Errorf("parseDiffSpec(%q) = %q,%q want %q,%q", c.spec, base, head, c.wantBase, c.wantHead)
		}
	}
}

func TestGitHandler_Parse(t *testing.T) {
	h := &GitHandler{}

	a, err := h.Parse(context.Background(), "git:diff --base=main --head=HEAD", Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Base != "main" || a.Head != "HEAD" {
		t.Errorf("Base/Head = %q/%q, want main/HEAD", a.Base, a.Head)
	}
}

func TestGitHandler_CanHandle(t *testing.T) {
	h := &GitHandler{}
	if !h.CanHandle("git:diff") {
		t.Error("expected git:diff to be handled")
	}
	if h.CanHandle("file:foo") {
		t.Error("did not expect file: to be handled")
	}
}
