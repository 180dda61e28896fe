package scanner

import (
	"bufio"
	"context"
	"os"

	"github.com/karrick/godirwalk"
	"github.com/sirupsen/logrus"

	"pkgsweep/report"
)

// Lockfiles are recognized by exact name only; no content sniffing.
var lockfileNames = map[string]struct{}{
	"package-lock.json": {},
	"pnpm-lock.yaml":    {},
	"yarn.lock":         {},
}

// scanLockfiles walks every root looking for lockfiles and tests each line
// of each one against the matcher. Lockfiles are opaque text here: every
// matching line becomes its own finding, whatever the file format.
func (s *Scanner) scanLockfiles(ctx context.Context) {
	for _, root := range s.cfg.Roots {
		if _, err := os.Stat(root); err != nil {
			logrus.Warnf("lockfile scan: skipping root %s: %v", root, err)
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
					return nil
				}
				if _, ok := lockfileNames[name]; ok {
					s.scanLockfileLines(path)
				}
				return nil
			},
			ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
				logrus.Debugf("lockfile scan: %s: %v", path, err)
				return godirwalk.SkipNode
			},
		})
		if err != nil && ctx.Err() == nil {
			logrus.Warnf("lockfile scan: walking %s: %v", root, err)
		}
	}
}

func (s *Scanner) scanLockfileLines(path string) {
	f, err := os.Open(path)
	if err != nil {
		logrus.Warnf("lockfile scan: %s: %v", path, err)
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if s.matcher.Match(line) {
			s.sink.Add(report.Match{
				Scope:    report.ScopeLockfile,
				Location: path,
				Text:     report.Truncate(line, report.MaxMatchText),
			})
		}
	}
	if err := sc.Err(); err != nil {
		logrus.Debugf("lockfile scan: reading %s: %v", path, err)
	}
}
