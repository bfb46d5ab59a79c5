// Package render implements the render pipeline: the core algorithm
// that turns a pack into a reproducible, budget-constrained,
// fingerprinted text payload.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ctx-go/internal/blobstore"
	"ctx-go/internal/ctxmodel"
	"ctx-go/internal/metadatastore"
	"ctx-go/internal/security"
	"ctx-go/internal/sources"
	"ctx-go/internal/tokens"
)

// ExclusionReason names why an artifact that would otherwise be
// included was left out of a render.
type ExclusionReason string

const (
	ExclusionOverBudget ExclusionReason = "over_budget"
	ExclusionDenylisted ExclusionReason = "denylisted"
)

// ArtifactSummary is the render-time view of one artifact that made it
// into (or was excluded from) a payload.
type ArtifactSummary struct {
	ArtifactID  string
	URI         string
	TokenCount  int
	ContentHash string
}

// Excluded pairs an artifact summary with why it didn't make the cut.
type Excluded struct {
	Summary ArtifactSummary
	Reason  ExclusionReason
}

// Redaction records one pattern's match count within one artifact,
// surfaced from internal/security.
type Redaction struct {
	ArtifactID string
	Pattern    string
	Count      int
}

// Result is the render engine's output: a full accounting of what was
// included, excluded, and redacted, plus the two fingerprints and the
// final payload text.
type Result struct {
	BudgetTokens       int
	TotalTokens        int
	Included           []ArtifactSummary
	Excluded           []Excluded
	Redactions         []Redaction
	Warnings           []string
	RenderFingerprint  string
	PayloadFingerprint string
	Payload            string
}

// Engine orchestrates the metadata store, blob store, source handler
// registry, redactor, and token estimator into one render. It holds no
// durable state of its own and is safe to invoke concurrently for
// distinct packs.
type Engine struct {
	store     metadatastore.MetadataStore
	blobs     blobstore.BlobStore
	registry  *sources.Registry
	denylist  *security.Denylist
	redactor  *security.Redactor
	estimator *tokens.Estimator
}

// New builds a render engine over the given components.
func New(store metadatastore.MetadataStore, blobs blobstore.BlobStore, registry *sources.Registry, denylist *security.Denylist, redactor *security.Redactor, estimator *tokens.Estimator) *Engine {
	return &Engine{
		store:     store,
		blobs:     blobs,
		registry:  registry,
		denylist:  denylist,
		redactor:  redactor,
		estimator: estimator,
	}
}

type processedArtifact struct {
	artifact    *ctxmodel.Artifact
	content     string
	tokenCount  int
	contentHash string
}

// Render runs the full pipeline for one pack: fetch membership, expand
// collections, load content, redact, estimate tokens, enforce budget,
// concatenate, and fingerprint. policyOverride, if non-nil, replaces the
// pack's stored render policy for this render only.
func (e *Engine) Render(ctx context.Context, packID string, policyOverride *ctxmodel.RenderPolicy) (*Result, error) {
	pack, err := e.store.GetPack(ctx, packID)
	if err != nil {
		return nil, err
	}

	policy := pack.Policy
	if policyOverride != nil {
		policy = *policyOverride
	}

	members, err := e.store.ListPackArtifactsOrdered(ctx, packID)
	if err != nil {
		return nil, err
	}

	leaves, denylisted, err := e.expandAll(ctx, members)
	if err != nil {
		return nil, err
	}

	processed, redactions, warnings, err := e.loadAndRedact(ctx, leaves)
	if err != nil {
		return nil, err
	}

	included, excluded := enforceBudget(processed, policy.BudgetTokens)

	payload := concatenate(included)
	renderFingerprint, err := e.fingerprint(pack.ID, policy, included)
	if err != nil {
		return nil, err
	}

	total := 0
	includedSummaries := make([]ArtifactSummary, len(included))
	for i, p := range included {
		includedSummaries[i] = summarize(p)
		total += p.tokenCount
	}

	excludedSummaries := make([]Excluded, 0, len(excluded)+len(denylisted))
	for _, p := range excluded {
		excludedSummaries = append(excludedSummaries, Excluded{Summary: summarize(p), Reason: ExclusionOverBudget})
	}
	for _, a := range denylisted {
		excludedSummaries = append(excludedSummaries, Excluded{
			Summary: ArtifactSummary{ArtifactID: artifactIdentity(a), URI: a.SourceURI},
			Reason:  ExclusionDenylisted,
		})
	}

	return &Result{
		BudgetTokens:       policy.BudgetTokens,
		TotalTokens:        total,
		Included:           includedSummaries,
		Excluded:           excludedSummaries,
		Redactions:         redactions,
		Warnings:           warnings,
		RenderFingerprint:  renderFingerprint,
		PayloadFingerprint: hashPayload(payload),
		Payload:            payload,
	}, nil
}

// expandAll replaces every collection artifact in canonical order with
// its expansion, leaving non-collection artifacts untouched. Expansion
// results are already lexicographically sorted, so the flattened
// sequence remains in canonical order.
//
// Collection artifacts are not themselves checked against the denylist
// (see App.AddArtifact) — their members are, here, since this is the
// first point at which each expanded member's own source URI exists.
// A denylisted member is dropped from leaves and reported separately
// rather than loaded and rendered.
func (e *Engine) expandAll(ctx context.Context, members []*ctxmodel.Artifact) (leaves, denylisted []*ctxmodel.Artifact, err error) {
	for _, a := range members {
		if !isCollection(a.Kind) {
			leaves = append(leaves, a)
			continue
		}

		handler, err := e.registry.Resolve(a.SourceURI)
		if err != nil {
			return nil, nil, err
		}
		expanded, err := handler.Expand(ctx, a)
		if err != nil {
			return nil, nil, err
		}
		for _, member := range expanded {
			if e.denylist != nil {
				if _, denied := e.denylist.MatchingPattern(member.SourceURI); denied {
					denylisted = append(denylisted, member)
					continue
				}
			}
			leaves = append(leaves, member)
		}
	}
	return leaves, denylisted, nil
}

func isCollection(kind ctxmodel.ArtifactKind) bool {
	return kind == ctxmodel.KindCollectionMdDir || kind == ctxmodel.KindCollectionGlob
}

// loadAndRedact loads each leaf's content — preferring the blob store
// when a content hash is already known and present there, falling back
// to the source handler otherwise — then redacts and estimates tokens.
func (e *Engine) loadAndRedact(ctx context.Context, leaves []*ctxmodel.Artifact) ([]processedArtifact, []Redaction, []string, error) {
	var processed []processedArtifact
	var redactions []Redaction
	var warnings []string

	for _, a := range leaves {
		content, warning, err := e.loadContent(ctx, a)
		if err != nil {
			return nil, nil, nil, err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}

		redactedContent, infos := e.redactor.Redact(artifactIdentity(a), content)
		for _, info := range infos {
			redactions = append(redactions, Redaction{
				ArtifactID: info.ArtifactID,
				Pattern:    info.Pattern,
				Count:      info.Count,
			})
		}

		tokenCount := e.estimator.Estimate(redactedContent)

		processed = append(processed, processedArtifact{
			artifact:    a,
			content:     redactedContent,
			tokenCount:  tokenCount,
			contentHash: blobstore.HashBytes([]byte(redactedContent)),
		})
	}

	return processed, redactions, warnings, nil
}

// loadContent obtains one artifact's content: from the blob store if a
// content hash is already known and present there, otherwise from the
// artifact's source handler.
func (e *Engine) loadContent(ctx context.Context, a *ctxmodel.Artifact) (content string, warning string, err error) {
	if a.ContentHash != "" {
		if has, herr := e.blobs.Has(a.ContentHash); herr == nil && has {
			var buf bytes.Buffer
			if err := e.blobs.Get(a.ContentHash, &buf); err == nil {
				return buf.String(), "", nil
			}
		}
	}

	handler, err := e.registry.Resolve(a.SourceURI)
	if err != nil {
		return "", "", err
	}
	content, err = handler.Load(ctx, a)
	if err != nil {
		return "", "", err
	}
	return content, "", nil
}

// enforceBudget applies the "continue and try" rule: artifacts are
// walked in canonical order, each one included if it still fits the
// remaining budget, otherwise excluded — later, smaller artifacts get a
// chance even after an earlier one overflowed.
func enforceBudget(processed []processedArtifact, budget int) (included, excluded []processedArtifact) {
	running := 0
	for _, p := range processed {
		if running+p.tokenCount <= budget {
			included = append(included, p)
			running += p.tokenCount
		} else {
			excluded = append(excluded, p)
		}
	}
	return included, excluded
}

// concatenate joins included artifacts in canonical order, each preceded
// by a delimiter line carrying its source URI. The exact format is part
// of the compatibility surface and must stay byte-stable.
func concatenate(included []processedArtifact) string {
	var sb strings.Builder
	for _, p := range included {
		fmt.Fprintf(&sb, "=== %s ===\n", p.artifact.SourceURI)
		sb.WriteString(p.content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// fingerprint computes the render fingerprint: a keyed BLAKE3 hash over
// the pack id, the canonical (sorted-key) JSON of the effective policy,
// and each included artifact's post-redaction content hash, in that
// fixed order.
func (e *Engine) fingerprint(packID string, policy ctxmodel.RenderPolicy, included []processedArtifact) (string, error) {
	policyJSON, err := json.Marshal(policy)
	if err != nil {
		return "", fmt.Errorf("marshaling policy: %w", err)
	}

	w := newFingerprintWriter()
	w.writeString(packID)
	w.writeString(string(policyJSON))
	for _, p := range included {
		w.writeString(p.contentHash)
	}
	return w.sum(), nil
}

func summarize(p processedArtifact) ArtifactSummary {
	return ArtifactSummary{
		ArtifactID:  artifactIdentity(p.artifact),
		URI:         p.artifact.SourceURI,
		TokenCount:  p.tokenCount,
		ContentHash: p.contentHash,
	}
}

// artifactIdentity returns an artifact's persisted ID if it has one, or
// its source URI otherwise — collection expansion produces transient
// artifacts with no metadata store row of their own.
func artifactIdentity(a *ctxmodel.Artifact) string {
	if a.ID != "" {
		return a.ID
	}
	return a.SourceURI
}
