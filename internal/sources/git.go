package sources

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
)

// DefaultGitTimeout bounds how long a git diff subprocess may run.
const DefaultGitTimeout = 30 * time.Second

// GitHandler handles git:diff [--base=REF] [--head=REF] URIs. With no
// head given, it diffs base against the working tree; base defaults to
// HEAD.
type GitHandler struct {
	Timeout time.Duration
}

func (h *GitHandler) CanHandle(uri string) bool {
	return strings.HasPrefix(uri, "git:")
}

func (h *GitHandler) Parse(_ context.Context, uri string, _ Options) (*ctxmodel.Artifact, error) {
	diffSpec, ok := strings.CutPrefix(uri, "git:diff")
	if !ok {
		return nil, &ctxerr.SourceFailureError{URI: uri, Detail: "invalid git URI, expected git:diff [--base=REF] [--head=REF]"}
	}

	base, head := parseDiffSpec(strings.TrimSpace(diffSpec))

	return &ctxmodel.Artifact{
		Kind:      ctxmodel.KindGitDiff,
		SourceURI: uri,
		Base:      base,
		Head:      head,
		MimeType:  "text/x-diff",
	}, nil
}

func (h *GitHandler) Load(ctx context.Context, artifact *ctxmodel.Artifact) (string, error) {
	timeout := h.Timeout
	if timeout == 0 {
		timeout = DefaultGitTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"diff"}
	if artifact.Head != "" {
		args = append(args, artifact.Base+".."+artifact.Head)
	} else {
		args = append(args, artifact.Base)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ctxerr.SourceFailureError{URI: artifact.SourceURI, Detail: "running git diff: " + stderr.String(), Err: err}
	}

	return stdout.String(), nil
}

func (h *GitHandler) Expand(_ context.Context, _ *ctxmodel.Artifact) ([]*ctxmodel.Artifact, error) {
	return nil, nil
}

// parseDiffSpec parses "--base=REF --head=REF" style flags out of the
// text following "git:diff". Base defaults to HEAD; head defaults to
// empty, meaning "diff against the working tree".
func parseDiffSpec(spec string) (base, head string) {
	base = "HEAD"
	for _, part := range strings.Fields(spec) {
		if v, ok := strings.CutPrefix(part, "--base="); ok {
			base = v
		} else if v, ok := strings.CutPrefix(part, "--head="); ok {
			head = v
		}
	}
	return base, head
}
