// Package sources implements the source-handler abstraction: parsing a
// pack artifact's URI into structured metadata, loading its content on
// demand, and expanding collection artifacts into their members.
package sources

import (
	"context"
	"strings"

	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
)

// Options carries the flags a caller may attach to a parse, beyond what
// the URI text itself encodes: collection expansion limits and git diff
// ref overrides.
type Options struct {
	MaxFiles  int
	Exclude   []string
	Recursive bool
	Base      string
	Head      string
}

// Handler parses, loads, and (for collections) expands one family of
// source URIs.
type Handler interface {
	// CanHandle reports whether this handler recognizes uri's scheme.
	CanHandle(uri string) bool

	// Parse turns a URI into an artifact. It does not persist anything.
	Parse(ctx context.Context, uri string, opts Options) (*ctxmodel.Artifact, error)

	// Load returns an artifact's textual content.
	Load(ctx context.Context, artifact *ctxmodel.Artifact) (string, error)

	// Expand returns a collection artifact's member artifacts. Handlers
	// for non-collection kinds return ctxerr.ErrNotFound-free nil, nil.
	Expand(ctx context.Context, artifact *ctxmodel.Artifact) ([]*ctxmodel.Artifact, error)
}

// Registry dispatches a URI to the first handler willing to accept it.
type Registry struct {
	handlers []Handler
}

// NewRegistry builds a registry covering every built-in source kind.
func NewRegistry() *Registry {
	return &Registry{
		handlers: []Handler{
			&TextHandler{},
			&GitHandler{},
			&CollectionHandler{},
			&FileHandler{},
		},
	}
}

// Resolve returns the handler that claims uri, or an UnknownSchemeError.
func (r *Registry) Resolve(uri string) (Handler, error) {
	for _, h := range r.handlers {
		if h.CanHandle(uri) {
			return h, nil
		}
	}
	return nil, &ctxerr.UnknownSchemeError{Scheme: scheme(uri), URI: uri}
}

func scheme(uri string) string {
	if i := strings.Index(uri, ":"); i >= 0 {
		return uri[:i]
	}
	return ""
}
