// Package ioc turns raw indicator-of-compromise input into the combined
// matcher shared by every scanner, and carries the heuristic signature
// sets used by the suspicious-content scan.
package ioc

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoTerms is returned when, after normalization, no search terms remain.
var ErrNoTerms = errors.New("no search terms supplied")

// LoadTerms collects search terms from an inline comma-separated list and
// an optional one-term-per-line file. File lines may carry trailing '#'
// comments. Each entry is normalized by stripping the comment and then all
// whitespace; empty results are dropped. Order is preserved and duplicates
// are kept. A missing or unreadable file is an error; so is ending up with
// zero terms.
func LoadTerms(inline, file string) ([]string, error) {
	var terms []string
	for _, raw := range strings.Split(inline, ",") {
		if t := NormalizeTerm(raw); t != "" {
			terms = append(terms, t)
		}
	}
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("terms file: %w", err)
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if t := NormalizeTerm(sc.Text()); t != "" {
				terms = append(terms, t)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("terms file: %w", err)
		}
	}
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	return terms, nil
}

// NormalizeTerm strips a '#' comment and every whitespace character from a
// raw indicator entry.
func NormalizeTerm(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return strings.Join(strings.Fields(s), "")
}
