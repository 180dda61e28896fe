// Package scanner implements the discovery strategies that enumerate
// candidate package records from each installation surface and test them
// against the combined IoC matcher, plus the independent heuristic scan
// for suspicious script and code content.
package scanner

import (
	"context"

	"github.com/sirupsen/logrus"

	"pkgsweep/config"
	"pkgsweep/ioc"
	"pkgsweep/report"
)

// Directories never descended into while walking scan roots.
var vcsDirs = map[string]struct{}{
	".git": {}, ".svn": {}, ".hg": {},
}

// Dependency directories excluded from manifest and content scanning.
var dependencyDirs = map[string]struct{}{
	"node_modules": {}, "bower_components": {},
}

// Scanner runs every enabled scope against one shared matcher and sink.
type Scanner struct {
	cfg     *config.Config
	matcher *ioc.Matcher
	sink    *report.Sink
}

// New wires a scanner to its configuration, compiled matcher and sink.
func New(cfg *config.Config, matcher *ioc.Matcher, sink *report.Sink) *Scanner {
	return &Scanner{cfg: cfg, matcher: matcher, sink: sink}
}

// Run executes the scopes in their fixed order: project lockfiles, the
// global npm registry, nvm-managed runtimes, nave-managed runtimes, and
// finally the heuristic content scan. Per-scope failures degrade that one
// surface to zero findings; Run only returns a non-nil error when the
// context was cancelled mid-scan.
func (s *Scanner) Run(ctx context.Context) error {
	logrus.Debugf("scanning with %d compiled patterns", len(s.matcher.Patterns()))

	s.scanLockfiles(ctx)
	if s.cfg.CheckGlobal {
		s.scanGlobal(ctx)
	} else {
		logrus.Debug("global registry scan not requested, skipping")
	}
	s.scanNvm(ctx)
	s.scanNave(ctx)
	if s.cfg.Suspicious != config.SuspiciousOff {
		s.scanSuspicious(ctx)
	}
	return ctx.Err()
}
