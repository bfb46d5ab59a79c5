package sources

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
)

// markdownParserInstance is configured once and reused; goldmark's
// Parser is safe to share across calls since parsing state lives in the
// reader passed to Parse, not in the parser itself.
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParserInstance
}

// FileHandler handles file:<path> and file:<path>#L<start>-L<end> URIs,
// plus bare paths with no scheme prefix at all.
type FileHandler struct{}

func (h *FileHandler) CanHandle(uri string) bool {
	return strings.HasPrefix(uri, "file:") || (!strings.Contains(uri, ":") && !strings.HasPrefix(uri, "text:"))
}

func (h *FileHandler) Parse(_ context.Context, uri string, _ Options) (*ctxmodel.Artifact, error) {
	rest := strings.TrimPrefix(uri, "file:")

	path := rest
	var lineStart, lineEnd int
	hasRange := false

	if idx := strings.Index(rest, "#L"); idx >= 0 {
		path = rest[:idx]
		rangeSpec := rest[idx+2:]
		start, end, err := parseLineRange(rangeSpec)
		if err != nil {
			return nil, &ctxerr.SourceFailureError{URI: uri, Detail: "parsing line range", Err: err}
		}
		lineStart, lineEnd = start, end
		hasRange = true
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ctxerr.SourceFailureError{URI: uri, Detail: "resolving path", Err: err}
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ctxerr.SourceFailureError{URI: uri, Detail: "reading file", Err: err}
	}

	kind := ctxmodel.KindFile
	switch {
	case hasRange:
		kind = ctxmodel.KindFileRange
	case strings.HasSuffix(strings.ToLower(abs), ".md"):
		kind = ctxmodel.KindMarkdown
	}

	artifact := &ctxmodel.Artifact{
		Kind:        kind,
		SourceURI:   uri,
		Path:        abs,
		LineStart:   lineStart,
		LineEnd:     lineEnd,
		ContentHash: blobstore.HashBytes(content),
		ByteSize:    int64(len(content)),
		MimeType:    mimeForPath(abs),
	}
	if kind == ctxmodel.KindMarkdown {
		artifact.Title = markdownTitle(content)
	}
	return artifact, nil
}

// markdownTitle walks a parsed markdown document's AST looking for its
// first level-1 heading, returning its plain text. Returns "" if the
// document has none, which is a valid, unremarkable document shape, not
// a parse failure.
func markdownTitle(content []byte) string {
	doc := getMarkdownParser().Parser().Parse(text.NewReader(content))

	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || title != "" {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 1 {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(content))
			}
		}
		title = buf.String()
		return ast.WalkStop, nil
	})
	return title
}

func (h *FileHandler) Load(_ context.Context, artifact *ctxmodel.Artifact) (string, error) {
	content, err := os.ReadFile(artifact.Path)
	if err != nil {
		return "", &ctxerr.SourceFailureError{URI: artifact.SourceURI, Detail: "reading file", Err: err}
	}

	switch artifact.Kind {
	case ctxmodel.KindFile, ctxmodel.KindMarkdown:
		return string(content), nil
	case ctxmodel.KindFileRange:
		lines := strings.Split(string(content), "\n")
		if artifact.LineStart >= len(lines) || artifact.LineEnd >= len(lines) {
			return "", &ctxerr.SourceFailureError{
				URI:    artifact.SourceURI,
				Detail: fmt.Sprintf("line range out of bounds: file has %d lines", len(lines)),
			}
		}
		return strings.Join(lines[artifact.LineStart:artifact.LineEnd+1], "\n"), nil
	default:
		return "", &ctxerr.SourceFailureError{URI: artifact.SourceURI, Detail: "unsupported artifact kind for file handler"}
	}
}

func (h *FileHandler) Expand(_ context.Context, _ *ctxmodel.Artifact) ([]*ctxmodel.Artifact, error) {
	return nil, nil
}

// parseLineRange parses "L<start>-L<end>" (the "L" already stripped off
// the leading side by the caller) into 0-based, inclusive bounds.
func parseLineRange(spec string) (start, end int, err error) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid line range %q, expected L<start>-L<end>", spec)
	}

	startStr := strings.TrimPrefix(strings.TrimSpace(parts[0]), "L")
	endStr := strings.TrimPrefix(strings.TrimSpace(parts[1]), "L")

	s, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	e, err := strconv.Atoi(endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q: %w", parts[1], err)
	}

	start = saturatingSub1(s)
	end = saturatingSub1(e)
	if start > end {
		return 0, 0, fmt.Errorf("range start %d is after end %d", s, e)
	}
	return start, end, nil
}

func saturatingSub1(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}

func mimeForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".md"):
		return "text/markdown"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	case strings.HasSuffix(path, ".go"):
		return "text/x-go"
	default:
		return "text/plain"
	}
}
