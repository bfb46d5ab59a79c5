// Package security implements the pure-function redaction service: an
// ordered, compiled-once pattern catalog applied to artifact content
// before it is counted and concatenated into a payload.
package security

import (
	"fmt"
	"regexp"
)

// Redaction records how many times one named pattern matched in one
// artifact's content.
type Redaction struct {
	ArtifactID string
	Pattern    string
	Count      int
}

type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// Redactor applies an ordered list of named regex patterns to content,
// replacing every match with "[REDACTED:<name>]". Order is part of the
// contract: redaction is deterministic only with a stable pattern order,
// and a more specific pattern (e.g. a bearer token carrying a JWT) should
// run before a more generic one that would otherwise also match it.
type Redactor struct {
	patterns []namedPattern
}

// DefaultPatterns is the built-in catalog: AWS access keys, GitHub
// tokens, JWTs, PEM private-key headers, bearer tokens, and generic
// API-key assignments, in the order they are applied.
func DefaultPatterns() map[string]string {
	return map[string]string{
		"AWS_ACCESS_KEY": `AKIA[0-9A-Z]{16}`,
		"GITHUB_TOKEN":   `gh[pousr]_[A-Za-z0-9]{20,}`,
		"JWT":            `eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`,
		"PRIVATE_KEY":    `-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----[\s\S]*?-----END (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`,
		"BEARER_TOKEN":   `(?i)bearer\s+[A-Za-z0-9\-_.=]+`,
		"API_KEY":        `(?i)(?:api[_-]?key|secret|token)\s*[:=]\s*['"]?[A-Za-z0-9\-_]{16,}['"]?`,
	}
}

// defaultOrder fixes the sequence DefaultPatterns is applied in — more
// specific patterns first, so a bearer-wrapped JWT or a PEM block is
// fully consumed before the generic assignment pattern ever sees it.
var defaultOrder = []string{
	"AWS_ACCESS_KEY",
	"GITHUB_TOKEN",
	"JWT",
	"PRIVATE_KEY",
	"BEARER_TOKEN",
	"API_KEY",
}

// New compiles the default pattern catalog in its fixed order.
func New() (*Redactor, error) {
	patterns := DefaultPatterns()
	ordered := make([]string, len(defaultOrder))
	copy(ordered, defaultOrder)
	return NewWithOrder(patterns, ordered)
}

// NewWithOrder compiles a caller-supplied catalog, applied in the given
// name order. Names in order not present in patterns are skipped.
func NewWithOrder(patterns map[string]string, order []string) (*Redactor, error) {
	r := &Redactor{}
	for _, name := range order {
		expr, ok := patterns[name]
		if !ok {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", name, err)
		}
		r.patterns = append(r.patterns, namedPattern{name: name, re: re})
	}
	return r, nil
}

// Redact applies every pattern, in order, to content and returns the
// transformed string together with one Redaction per pattern that
// matched at least once. Each pattern runs a single pass over the
// progressively-redacted text — a pattern never matches text a prior
// pattern already replaced, since "[REDACTED:<name>]" markers don't
// resemble any catalog pattern, so no fixed-point iteration is needed.
func (r *Redactor) Redact(artifactID, content string) (string, []Redaction) {
	var redactions []Redaction

	for _, p := range r.patterns {
		matches := p.re.FindAllStringIndex(content, -1)
		if len(matches) == 0 {
			continue
		}
		marker := fmt.Sprintf("[REDACTED:%s]", p.name)
		content = p.re.ReplaceAllString(content, marker)
		redactions = append(redactions, Redaction{
			ArtifactID: artifactID,
			Pattern:    p.name,
			Count:      len(matches),
		})
	}

	return content, redactions
}
