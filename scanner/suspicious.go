package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"pkgsweep/config"
	"pkgsweep/ioc"
	"pkgsweep/report"
)

// maxScriptText caps the script value embedded in a SCRIPTS finding.
// The actual budget per finding also subtracts the key and annotation so
// the annotation survives the final length cap.
const maxScriptText = 180

// Curated file set for the non-broad code scan: script, markup/config and
// container-definition files.
var codeScanExts = map[string]struct{}{
	".js": {}, ".mjs": {}, ".cjs": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".ps1": {}, ".py": {}, ".rb": {},
	".json": {}, ".yml": {}, ".yaml": {}, ".toml": {}, ".ini": {}, ".env": {},
	".html": {}, ".htm": {}, ".xml": {}, ".md": {}, ".dockerfile": {},
}

var codeScanNames = map[string]struct{}{
	"Dockerfile": {}, "Containerfile": {}, "Makefile": {},
}

// scanSuspicious runs the heuristic engine: manifest script entries first,
// then file content. Neither consults the IoC matcher.
func (s *Scanner) scanSuspicious(ctx context.Context) {
	s.scanScriptFields(ctx)
	s.scanCodeContent(ctx)
}

// scanScriptFields checks every package.json outside dependency
// directories. Script entries run automatically on install/build, so each
// triggered category is reported separately with its annotation to speed
// up responder triage.
func (s *Scanner) scanScriptFields(ctx context.Context) {
	s.walkRoots(ctx, "script scan", func(path string, de *godirwalk.Dirent) {
		if de.Name() != "package.json" {
			return
		}
		m, err := readManifest(path)
		if err != nil {
			logrus.Debugf("script scan: %s: %v", path, err)
			return
		}
		keys := make([]string, 0, len(m.Scripts))
		for k := range m.Scripts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := m.Scripts[key]
			for _, set := range ioc.ScriptSignatureSets {
				if set.Matches(value) {
					s.sink.Add(report.Match{
						Scope:    report.ScopeScripts,
						Location: path,
						Text:     scriptFindingText(key, value, set.Annotation),
					})
				}
			}
		}
	})
}

// scriptFindingText renders `key=value annotation`, shortening the value
// so the whole text fits the report cap. The annotation is the triage
// signal and must never be the part that gets cut.
func scriptFindingText(key, value, annotation string) string {
	budget := report.MaxMatchText - len([]rune(key)) - len([]rune(annotation)) - 2
	if budget > maxScriptText {
		budget = maxScriptText
	}
	if budget < 0 {
		budget = 0
		key = report.Truncate(key, report.MaxMatchText-len([]rune(annotation))-2)
	}
	return fmt.Sprintf("%s=%s %s", key, report.Truncate(value, budget), annotation)
}

// scanCodeContent sweeps file content line by line against the same
// signature sets. Files fan out to a worker pool; the shared sink
// serializes the resulting writes.
func (s *Scanner) scanCodeContent(ctx context.Context) {
	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(s.cfg.Workers, func(v interface{}) {
		defer wg.Done()
		if ctx.Err() != nil {
			return
		}
		s.scanFileContent(v.(string))
	})
	if err != nil {
		logrus.Warnf("code scan: worker pool: %v", err)
		return
	}
	defer pool.Release()

	s.walkRoots(ctx, "code scan", func(path string, de *godirwalk.Dirent) {
		if !s.codeScanCandidate(de.Name()) {
			return
		}
		wg.Add(1)
		if err := pool.Invoke(path); err != nil {
			wg.Done()
			logrus.Debugf("code scan: submit %s: %v", path, err)
		}
	})
	wg.Wait()
}

// codeScanCandidate applies the file-set policy. Lockfiles are never
// content-scanned here; they have their own scope.
func (s *Scanner) codeScanCandidate(name string) bool {
	if _, lock := lockfileNames[name]; lock {
		return false
	}
	if s.cfg.Suspicious == config.SuspiciousBroad {
		return true
	}
	if _, ok := codeScanNames[name]; ok {
		return true
	}
	_, ok := codeScanExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (s *Scanner) scanFileContent(path string) {
	f, err := os.Open(path)
	if err != nil {
		logrus.Debugf("code scan: %s: %v", path, err)
		return
	}
	defer f.Close()

	// ReadFull rather than a single Read: a short read here would hand
	// DetectContentType a partial prefix.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		logrus.Debugf("code scan: %s: %v", path, err)
		return
	}
	if !isTextContent(head[:n]) {
		logrus.Debugf("code scan: %s: binary content, skipped", path)
		return
	}
	if _, err := f.Seek(0, 0); err != nil {
		logrus.Debugf("code scan: %s: %v", path, err)
		return
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if ioc.AnySignature(line) {
			s.sink.Add(report.Match{
				Scope:    report.ScopeCode,
				Location: path,
				Text:     report.Truncate(strings.TrimSpace(line), report.MaxMatchText),
			})
		}
	}
	if err := sc.Err(); err != nil {
		logrus.Debugf("code scan: reading %s: %v", path, err)
	}
}

// isTextContent is a best-effort charset sniff; encodings it misreads are
// skipped, not fatal.
func isTextContent(head []byte) bool {
	if len(head) == 0 {
		return false
	}
	ctype := http.DetectContentType(head)
	return strings.HasPrefix(ctype, "text/") ||
		strings.Contains(ctype, "json") ||
		strings.Contains(ctype, "xml")
}

// walkRoots walks every configured root with the shared exclusion rules
// for the heuristic scans: dependency directories and VCS metadata are
// never descended into.
func (s *Scanner) walkRoots(ctx context.Context, tag string, visit func(path string, de *godirwalk.Dirent)) {
	for _, root := range s.cfg.Roots {
		if _, err := os.Stat(root); err != nil {
			logrus.Warnf("%s: skipping root %s: %v", tag, root, err)
			continue
		}
		err := godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				name := de.Name()
				if de.IsDir() {
					if _, skip := vcsDirs[name]; skip {
						return godirwalk.SkipThis
					}
					if _, skip := dependencyDirs[name]; skip {
						return godirwalk.SkipThis
					}
					return nil
				}
				visit(path, de)
				return nil
			},
			ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
				logrus.Debugf("%s: %s: %v", tag, path, err)
				return godirwalk.SkipNode
			},
		})
		if err != nil && ctx.Err() == nil {
			logrus.Warnf("%s: walking %s: %v", tag, root, err)
		}
	}
}
