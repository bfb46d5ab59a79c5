// Package app wires the blob store, metadata store, source registry,
// redactor, token estimator, and render engine into one facade, the way
// a CLI or MCP transport would consume ctx as a library.
package app

import (
	"context"
	"fmt"
	"os"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/config"
	"ctx-go/internal/corekit"
	"ctx-go/internal/ctxerr"
	"ctx-go/internal/ctxmodel"
	"ctx-go/internal/metadatastore"
	"ctx-go/internal/render"
	"ctx-go/internal/security"
	"ctx-go/internal/sources"
	"ctx-go/internal/tokens"
)

// App is the application layer between a front end (CLI, MCP transport)
// and the core components. It constructs every dependency from config
// and exposes one method per operation the core supports.
type App struct {
	cfg       *config.Config
	blobs     blobstore.BlobStore
	store     metadatastore.MetadataStore
	registry  *sources.Registry
	denylist  *security.Denylist
	engine    *render.Engine
	logger    corekit.Logger
	logFile   *os.File
}

// New builds a fully wired App from the given config. The caller must
// call Close when done.
func New(cfg *config.Config) (*App, error) {
	blobs, err := blobstore.NewFromConfig(cfg.BlobStore)
	if err != nil {
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	store, err := metadatastore.NewFromConfig(cfg.Metadata, cfg.HostID, blobs)
	if err != nil {
		return nil, fmt.Errorf("creating metadata store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("metadata store schema out of date: %w", err)
	}

	redactor, err := security.New()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating redactor: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	registry := sources.NewRegistry()
	estimator := tokens.New()
	denylist := security.NewDenylist(cfg.Denylist)
	engine := render.New(store, blobs, registry, denylist, redactor, estimator)

	return &App{
		cfg:      cfg,
		blobs:    blobs,
		store:    store,
		registry: registry,
		denylist: denylist,
		engine:   engine,
		logger:   &slogLogger{l: logger},
		logFile:  logFile,
	}, nil
}

// CreatePack creates a new pack. A nil policy uses ctxmodel's default.
func (a *App) CreatePack(ctx context.Context, name string, policy *ctxmodel.RenderPolicy) (*ctxmodel.Pack, error) {
	p := ctxmodel.DefaultRenderPolicy()
	if policy != nil {
		p = *policy
	}
	pack, err := a.store.CreatePack(ctx, name, p)
	if err != nil {
		return nil, err
	}
	a.logger.Info("pack created", "pack_id", pack.ID, "name", name)
	return pack, nil
}

// GetPack returns a pack by ID.
func (a *App) GetPack(ctx context.Context, id string) (*ctxmodel.Pack, error) {
	return a.store.GetPack(ctx, id)
}

// ListPacks returns every pack.
func (a *App) ListPacks(ctx context.Context) ([]*ctxmodel.Pack, error) {
	return a.store.ListPacks(ctx)
}

// DeletePack deletes a pack and its membership rows.
func (a *App) DeletePack(ctx context.Context, id string) error {
	if err := a.store.DeletePack(ctx, id); err != nil {
		return err
	}
	a.logger.Info("pack deleted", "pack_id", id)
	return nil
}

// AddArtifact parses uri, loads its content when the source kind has
// content up front (files, text), and persists it into the pack at the
// given priority. Collection and git-diff kinds have no content until
// render time, so they are persisted without one.
//
// Collection artifacts (md_dir:/glob:) are not themselves checked
// against the denylist — their URI names a directory or pattern, not a
// file — only their expansions are, at render time.
func (a *App) AddArtifact(ctx context.Context, packID, uri string, opts sources.Options, priority int) (*ctxmodel.Artifact, error) {
	handler, err := a.registry.Resolve(uri)
	if err != nil {
		return nil, err
	}

	artifact, err := handler.Parse(ctx, uri, opts)
	if err != nil {
		return nil, err
	}

	if artifact.Kind != ctxmodel.KindCollectionMdDir && artifact.Kind != ctxmodel.KindCollectionGlob {
		if pattern, denied := a.denylist.MatchingPattern(uri); denied {
			return nil, &ctxerr.DenylistMatchError{Pattern: pattern, URI: uri}
		}
	}

	var added *ctxmodel.Artifact
	switch artifact.Kind {
	case ctxmodel.KindCollectionMdDir, ctxmodel.KindCollectionGlob, ctxmodel.KindGitDiff:
		added, err = a.store.AddArtifactWithoutContent(ctx, packID, artifact, priority)
	default:
		content, loadErr := handler.Load(ctx, artifact)
		if loadErr != nil {
			return nil, loadErr
		}
		added, err = a.store.AddArtifactWithContent(ctx, packID, artifact, []byte(content), priority)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info("artifact added", "pack_id", packID, "artifact_id", added.ID, "uri", uri)
	return added, nil
}

// RemoveArtifact removes an artifact from a pack's membership.
func (a *App) RemoveArtifact(ctx context.Context, packID, artifactID string) error {
	return a.store.RemoveArtifact(ctx, packID, artifactID)
}

// Render runs the render pipeline for a pack. policyOverride, if
// non-nil, replaces the pack's stored policy for this render only.
func (a *App) Render(ctx context.Context, packID string, policyOverride *ctxmodel.RenderPolicy) (*render.Result, error) {
	result, err := a.engine.Render(ctx, packID, policyOverride)
	if err != nil {
		return nil, err
	}
	a.logger.Info("pack rendered", "pack_id", packID, "total_tokens", result.TotalTokens, "included", len(result.Included), "excluded", len(result.Excluded))
	return result, nil
}

// CreateSnapshot renders a pack and persists the result as an immutable
// snapshot, pinning the exact artifact list and order it rendered from.
func (a *App) CreateSnapshot(ctx context.Context, packID string, policyOverride *ctxmodel.RenderPolicy) (*ctxmodel.Snapshot, error) {
	result, err := a.Render(ctx, packID, policyOverride)
	if err != nil {
		return nil, err
	}

	items := make([]ctxmodel.SnapshotItem, len(result.Included))
	for i, inc := range result.Included {
		items[i] = ctxmodel.SnapshotItem{
			ArtifactID:  inc.ArtifactID,
			ContentHash: inc.ContentHash,
			Position:    i,
		}
	}

	snap := &ctxmodel.Snapshot{
		PackID:             packID,
		RenderFingerprint:  result.RenderFingerprint,
		PayloadFingerprint: result.PayloadFingerprint,
		TokenEstimate:      result.TotalTokens,
		Payload:            result.Payload,
		Items:              items,
	}
	if err := a.store.CreateSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	a.logger.Info("snapshot created", "pack_id", packID, "snapshot_id", snap.ID, "render_fingerprint", snap.RenderFingerprint)
	return snap, nil
}

// GetSnapshot returns a snapshot by ID.
func (a *App) GetSnapshot(ctx context.Context, id string) (*ctxmodel.Snapshot, error) {
	return a.store.GetSnapshot(ctx, id)
}

// ListSnapshotsByPack returns every snapshot of a pack, newest first.
func (a *App) ListSnapshotsByPack(ctx context.Context, packID string) ([]*ctxmodel.Snapshot, error) {
	return a.store.ListSnapshotsByPack(ctx, packID)
}

// Close closes the metadata store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing metadata store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
