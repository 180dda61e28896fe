package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"

	"github.com/sirupsen/logrus"

	"pkgsweep/report"
)

// GlobalLocation is the location sentinel for global-registry matches,
// which have no meaningful file path.
const GlobalLocation = "(global)"

type npmListOutput struct {
	Dependencies map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

// scanGlobal asks npm for the globally installed top-level packages and
// tests each derived name@version string against the matcher. A missing
// npm, a failed query or a timeout degrades this scope to zero findings.
func (s *Scanner) scanGlobal(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	// npm exits non-zero on unmet peer deps while still emitting usable
	// JSON, so only an empty output counts as a hard failure.
	out, err := exec.CommandContext(cctx, "npm", "ls", "-g", "--depth=0", "--json").Output()
	if len(out) == 0 {
		logrus.Warnf("global scan: npm query failed: %v", err)
		return
	}

	records, err := parseNpmList(out)
	if err != nil {
		logrus.Warnf("global scan: %v", err)
		return
	}
	for _, rec := range records {
		id := rec.ID()
		if s.matcher.Match(id) {
			s.sink.Add(report.Match{
				Scope:    report.ScopeGlobal,
				Location: GlobalLocation,
				Text:     report.Truncate(id, report.MaxMatchText),
			})
		}
	}
}

// parseNpmList decodes `npm ls --json` output into package records sorted
// by name, so the report order is stable across runs.
func parseNpmList(data []byte) ([]PackageRecord, error) {
	var out npmListOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding npm ls output: %w", err)
	}
	records := make([]PackageRecord, 0, len(out.Dependencies))
	for name, dep := range out.Dependencies {
		records = append(records, PackageRecord{Name: name, Version: dep.Version})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}
