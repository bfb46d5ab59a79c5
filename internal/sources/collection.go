package sources

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
)

// CollectionHandler handles md_dir:<path> and glob:<pattern> URIs.
// Collections hold no content of their own — they expand into member
// file artifacts, which are loaded individually during render.
type CollectionHandler struct{}

func (h *CollectionHandler) CanHandle(uri string) bool {
	return strings.HasPrefix(uri, "md_dir:") || strings.HasPrefix(uri, "glob:")
}

func (h *CollectionHandler) Parse(_ context.Context, uri string, opts Options) (*ctxmodel.Artifact, error) {
	switch {
	case strings.HasPrefix(uri, "md_dir:"):
		path := strings.TrimPrefix(uri, "md_dir:")
		return &ctxmodel.Artifact{
			Kind:      ctxmodel.KindCollectionMdDir,
			SourceURI: uri,
			Path:      path,
			Recursive: opts.Recursive,
			MaxFiles:  opts.MaxFiles,
			Exclude:   opts.Exclude,
			MimeType:  "application/x-ctx-collection",
		}, nil
	case strings.HasPrefix(uri, "glob:"):
		pattern := strings.TrimPrefix(uri, "glob:")
		return &ctxmodel.Artifact{
			Kind:      ctxmodel.KindCollectionGlob,
			SourceURI: uri,
			Pattern:   pattern,
			MimeType:  "application/x-ctx-collection",
		}, nil
	default:
		return nil, &ctxerr.SourceFailureError{URI: uri, Detail: "invalid collection URI"}
	}
}

func (h *CollectionHandler) Load(_ context.Context, artifact *ctxmodel.Artifact) (string, error) {
	return "", &ctxerr.SourceFailureError{URI: artifact.SourceURI, Detail: "collections must be expanded before loading"}
}

func (h *CollectionHandler) Expand(_ context.Context, artifact *ctxmodel.Artifact) ([]*ctxmodel.Artifact, error) {
	switch artifact.Kind {
	case ctxmodel.KindCollectionMdDir:
		paths, err := expandMdDir(artifact.Path, artifact.MaxFiles, artifact.Exclude, artifact.Recursive)
		if err != nil {
			return nil, &ctxerr.SourceFailureError{URI: artifact.SourceURI, Detail: "expanding directory", Err: err}
		}
		return filesToArtifacts(paths), nil
	case ctxmodel.KindCollectionGlob:
		paths, err := expandGlob(artifact.Pattern)
		if err != nil {
			return nil, &ctxerr.SourceFailureError{URI: artifact.SourceURI, Detail: "expanding glob", Err: err}
		}
		return filesToArtifacts(paths), nil
	default:
		return nil, nil
	}
}

// expandMdDir lists Markdown files under path, sorted for determinism,
// excluding any whose path contains one of the exclude substrings and
// applying maxFiles as a final truncation.
func expandMdDir(path string, maxFiles int, exclude []string, recursive bool) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", path)
	}

	var files []string

	if recursive {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if isMarkdown(p) && !isExcluded(p, exclude) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			p := filepath.Join(path, e.Name())
			if isMarkdown(p) && !isExcluded(p, exclude) {
				files = append(files, p)
			}
		}
	}

	sort.Strings(files)

	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	return files, nil
}

// expandGlob lists files matching pattern, sorted for determinism.
func expandGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}

	sort.Strings(files)
	return files, nil
}

func filesToArtifacts(paths []string) []*ctxmodel.Artifact {
	out := make([]*ctxmodel.Artifact, len(paths))
	for i, p := range paths {
		kind := ctxmodel.KindFile
		if isMarkdown(p) {
			kind = ctxmodel.KindMarkdown
		}
		out[i] = &ctxmodel.Artifact{
			Kind:      kind,
			SourceURI: "file:" + p,
			Path:      p,
			MimeType:  mimeForPath(p),
		}
	}
	return out
}

func isMarkdown(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

func isExcluded(path string, exclude []string) bool {
	for _, pattern := range exclude {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
