package ioc

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher is the compiled disjunction of every pattern derived from the
// search terms. It is built once per run and shared read-only by all
// scanners; no scanner re-derives patterns for its own surface.
type Matcher struct {
	re       *regexp.Regexp
	patterns []string
}

// Compile derives literal-match patterns from each term and unions them.
//
// For every term the exact term is emitted, metacharacter-escaped. When a
// term carries a version suffix (an '@' past position zero; a leading '@'
// is an npm scope, not a version), two more patterns are emitted:
//
//   - name@   — catches any installed version of that package
//   - name": "version   — catches the JSON declaration pair as it appears
//     in package-lock files, where name and version are separate fields
//
// Everything goes through regexp.QuoteMeta, so characters like '.', '@',
// '/' and '+' in package identifiers always match literally.
func Compile(terms []string) (*Matcher, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	var pats []string
	for _, t := range terms {
		pats = append(pats, regexp.QuoteMeta(t))
		if i := strings.LastIndex(t, "@"); i > 0 {
			name, version := t[:i], t[i+1:]
			pats = append(pats, regexp.QuoteMeta(name)+"@")
			pats = append(pats, regexp.QuoteMeta(name+`": "`+version))
		}
	}
	re, err := regexp.Compile(strings.Join(pats, "|"))
	if err != nil {
		return nil, fmt.Errorf("compile matcher: %w", err)
	}
	return &Matcher{re: re, patterns: pats}, nil
}

// Match reports whether s contains any compiled pattern.
func (m *Matcher) Match(s string) bool {
	return m.re.MatchString(s)
}

// First returns the leftmost matching substring of s, or "".
func (m *Matcher) First(s string) string {
	return m.re.FindString(s)
}

// Patterns returns a copy of the individual patterns, in derivation order.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}
