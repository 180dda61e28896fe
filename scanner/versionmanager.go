package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"pkgsweep/report"
)

// layoutGlob is one manifest discovery pattern within a version-manager
// layout. exclude names a path segment that disqualifies a manifest.
type layoutGlob struct {
	pattern string
	exclude string
}

// layout describes a version-manager directory convention: where its base
// lives, which subdirectory proves the tool is present, and the glob
// patterns that locate package manifests under it.
type layout struct {
	scope    report.Scope
	name     string
	base     string
	required string
	globs    []layoutGlob
}

// scanNvm covers the per-version-directory convention: each installed node
// version keeps its own global package tree under versions/node.
func (s *Scanner) scanNvm(ctx context.Context) {
	base := s.cfg.NvmDir
	if base == "" {
		base = os.Getenv("NVM_DIR")
	}
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".nvm")
		}
	}
	s.scanLayout(ctx, layout{
		scope:    report.ScopeNvm,
		name:     "nvm",
		base:     base,
		required: filepath.Join("versions", "node"),
		globs: []layoutGlob{
			{pattern: filepath.Join("versions", "node", "*", "lib", "node_modules", "*", "package.json")},
		},
	})
}

// scanNave covers the named-environment convention. Two independent passes
// run: the canonical lib/node_modules pattern, and a broader node_modules
// fallback for non-standard layouts (skipping cache subpaths). A manifest
// found by both passes is reported twice; a duplicate here can be a
// legitimate secondary finding, so nothing is deduplicated.
func (s *Scanner) scanNave(ctx context.Context) {
	base := s.cfg.NaveDir
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".nave")
		}
	}
	s.scanLayout(ctx, layout{
		scope:    report.ScopeNave,
		name:     "nave",
		base:     base,
		required: "installed",
		globs: []layoutGlob{
			{pattern: filepath.Join("installed", "*", "lib", "node_modules", "*", "package.json")},
			{pattern: filepath.Join("installed", "*", "node_modules", "*", "package.json"), exclude: "cache"},
		},
	})
}

func (s *Scanner) scanLayout(ctx context.Context, l layout) {
	if l.base == "" {
		logrus.Warnf("%s scan: no base directory resolved, skipping", l.name)
		return
	}
	if _, err := os.Stat(filepath.Join(l.base, l.required)); err != nil {
		logrus.Warnf("%s scan: %s not present under %s, skipping", l.name, l.required, l.base)
		return
	}

	found := 0
	for _, g := range l.globs {
		// Glob returns sorted paths, keeping report order deterministic.
		manifests, err := filepath.Glob(filepath.Join(l.base, g.pattern))
		if err != nil {
			logrus.Warnf("%s scan: bad pattern %s: %v", l.name, g.pattern, err)
			continue
		}
		for _, mf := range manifests {
			if ctx.Err() != nil {
				return
			}
			if g.exclude != "" && hasPathSegment(mf, g.exclude) {
				continue
			}
			m, err := readManifest(mf)
			if err != nil {
				logrus.Debugf("%s scan: %s: %v", l.name, mf, err)
				continue
			}
			found++
			rec := PackageRecord{Name: m.Name, Version: m.Version, Path: mf}
			if id := rec.ID(); s.matcher.Match(id) {
				s.sink.Add(report.Match{
					Scope:    l.scope,
					Location: filepath.Dir(mf),
					Text:     report.Truncate(id, report.MaxMatchText),
				})
			}
		}
	}
	if found == 0 {
		logrus.Infof("%s scan: no package manifests found under %s", l.name, l.base)
	}
}

func hasPathSegment(path, segment string) bool {
	for _, part := range strings.Split(path, string(os.PathSeparator)) {
		if part == segment {
			return true
		}
	}
	return false
}
