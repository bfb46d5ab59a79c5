package sources

import (
	"context"
	"strings"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
)

// TextHandler handles text:<inline content> URIs — content supplied
// directly in the URI rather than read from any external source.
type TextHandler struct{}

func (h *TextHandler) CanHandle(uri string) bool {
	return strings.HasPrefix(uri, "text:")
}

func (h *TextHandler) Parse(_ context.Context, uri string, _ Options) (*ctxmodel.Artifact, error) {
	content, ok := strings.CutPrefix(uri, "text:")
	if !ok {
		return nil, &ctxerr.SourceFailureError{URI: uri, Detail: "invalid text URI"}
	}

	return &ctxmodel.Artifact{
		Kind:          ctxmodel.KindText,
		SourceURI:     uri,
		InlineContent: content,
		ContentHash:   blobstore.HashBytes([]byte(content)),
		ByteSize:      int64(len(content)),
		MimeType:      "text/plain",
	}, nil
}

func (h *TextHandler) Load(_ context.Context, artifact *ctxmodel.Artifact) (string, error) {
	return artifact.InlineContent, nil
}

func (h *TextHandler) Expand(_ context.Context, _ *ctxmodel.Artifact) ([]*ctxmodel.Artifact, error) {
	return nil, nil
}
