package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ctx-go/internal/ctxmodel"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestFileHandler_CanHandle(t *testing.T) {
	h := &FileHandler{}

	cases := []struct {
		uri  string
		want bool
	}{
		{"file:foo.txt", true},
		{"foo.txt", true},
		{"text:hello", false},
		{"git:diff", false},
		{"md_dir:docs", false},
	}
	for _, c := range cases {
		if got := h.CanHandle(c.uri); got != c.want {
			t.Errorf("CanHandle(%q) = %v, want %v", c.uri, got, c.want)
		}
	}
}

func TestFileHandler_Parse_WholeFile(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "hello\nworld\n")
	h := &FileHandler{}

	a, err := h.Parse(context.Background(), "file:"+path, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Kind != ctxmodel.KindFile {
		t.Errorf("Kind = %v, want KindFile", a.Kind)
	}
	if a.ContentHash == "" {
		t.Error("ContentHash is empty")
	}
	if a.ByteSize != int64(len("hello\nworld\n")) {
		t.Errorf("ByteSize = %d", a.ByteSize)
	}
}

func TestFileHandler_Parse_MarkdownExtension(t *testing.T) {
	path := writeTempFile(t, "readme.md", "# Title\n")
	h := &FileHandler{}

	a, err := h.Parse(context.Background(), "file:"+path, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Kind != ctxmodel.KindMarkdown {
		t.Errorf("Kind = %v, want KindMarkdown", a.Kind)
	}
	if a.Title != "Title" {
		t.Errorf("Title = %q, want %q", a.Title, "Title")
	}
}

func TestFileHandler_Parse_MarkdownNoHeading(t *testing.T) {
	path := writeTempFile(t, "notes.md", "just a paragraph, no heading\n")
	h := &FileHandler{}

	a, err := h.Parse(context.Background(), "file:"+path, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Title != "" {
		t.Errorf("Title = %q, want empty", a.Title)
	}
}

func TestFileHandler_Parse_LineRange(t *testing.T) {
	path := writeTempFile(t, "code.go", "line1\nline2\nline3\nline4\n")
	h := &FileHandler{}

	a, err := h.Parse(context.Background(), "file:"+path+"#L2-L3", Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Kind != ctxmodel.KindFileRange {
		t.Errorf("Kind = %v, want KindFileRange", a.Kind)
	}
	if a.LineStart != 1 || a.LineEnd != 2 {
		t.Errorf("LineStart/LineEnd = %d/%d, want 1/2", a.LineStart, a.LineEnd)
	}

	content, err := h.Load(context.Background(), a)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if content != "line2\nline3" {
		t.Errorf("Load() = %q, want %q", content, "line2\nline3")
	}
}

func TestFileHandler_Load_OutOfBounds(t *testing.T) {
	path := writeTempFile(t, "short.txt", "only one line\n")
	h := &FileHandler{}

	a, err := h.Parse(context.Background(), "file:"+path+"#L1-L50", Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := h.Load(context.Background(), a); err == nil {
		t.Error("Load() expected error for out-of-bounds range")
	}
}

func TestParseLineRange(t *testing.T) {
	cases := []struct {
		spec       string
		start, end int
		wantErr    bool
	}{
		{"10-L20", 9, 19, false},
		{"1-L1", 0, 0, false},
		{"20-L10", 0, 0, true},
		{"garbage", 0, 0, true},
	}
	for _, c := range cases {
		start, end, err := parseLineRange(c.spec)
		if (err != nil) != c.wantErr {
			t.Errorf("parseLineRange(%q) error = %v, wantErr %v", c.spec, err, c.wantErr)
			continue
		}
		if err == nil && (start != c.start || end != c.end) {
			t.Errorf("parseLineRange(%q) = %d,%d want %d,%d", c.spec, start, end, c.start, c.end)
		}
	}
}
