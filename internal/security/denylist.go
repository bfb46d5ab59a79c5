package security

import (
	"regexp"
	"strings"
)

// denyPattern is a compiled glob pattern, extended from filepath.Match
// to support "**" (match across directory boundaries).
type denyPattern struct {
	raw string
	re  *regexp.Regexp
}

// Denylist checks artifact paths against an ordered list of glob
// patterns, the hard gate applied before any non-collection artifact is
// added to a pack.
type Denylist struct {
	patterns []denyPattern
}

// NewDenylist compiles raw glob pattern strings. Patterns that fail to
// compile are skipped rather than causing an error, matching the
// permissive behavior of a denylist that must never itself crash a run.
func NewDenylist(rawPatterns []string) *Denylist {
	var patterns []denyPattern
	for _, raw := range rawPatterns {
		re, err := globToRegexp(raw)
		if err != nil {
			continue
		}
		patterns = append(patterns, denyPattern{raw: raw, re: re})
	}
	return &Denylist{patterns: patterns}
}

// IsDenied reports whether path matches any pattern in the list.
func (d *Denylist) IsDenied(path string) bool {
	_, denied := d.MatchingPattern(path)
	return denied
}

// MatchingPattern returns the first pattern that matches path, if any.
func (d *Denylist) MatchingPattern(path string) (string, bool) {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, p := range d.patterns {
		if p.re.MatchString(normalized) {
			return p.raw, true
		}
	}
	return "", false
}

// globToRegexp converts a glob pattern into an anchored regular
// expression. "**/" matches zero or more leading path segments, "/**"
// matches zero or more trailing path segments, a bare "**" matches
// anything including "/", "*" matches within one segment, and "?"
// matches one character within one segment. filepath.Match alone
// cannot express "**" spanning segments, which the denylist's own
// examples (e.g. "**/.env*") require.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 3
		case strings.HasPrefix(pattern[i:], "/**"):
			b.WriteString("(?:/.*)?")
			i += 3
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			b.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			b.WriteString("[^/]")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}
