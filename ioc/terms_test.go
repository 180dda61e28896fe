package ioc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTerms_InlineAndFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "iocs.txt")
	content := `
# full-line comment
@ctrl/tinycolor@4.1.1
posthog-node @ 4.3.2   # embedded whitespace gets stripped
kill-port

ngx-bootstrap@18.1.4  # trailing comment
`
	if err := os.WriteFile(fp, []byte(content), 0644); err != nil {
		t.Fatalf("write terms file: %v", err)
	}

	terms, err := LoadTerms("foo, bar@1.0.0 ,,", fp)
	if err != nil {
		t.Fatalf("LoadTerms error: %v", err)
	}
	want := []string{
		"foo", "bar@1.0.0",
		"@ctrl/tinycolor@4.1.1", "posthog-node@4.3.2", "kill-port", "ngx-bootstrap@18.1.4",
	}
	if len(terms) != len(want) {
		t.Fatalf("expected %d terms, got %d: %v", len(want), len(terms), terms)
	}
	for i, w := range want {
		if terms[i] != w {
			t.Errorf("term %d: expected %q, got %q", i, w, terms[i])
		}
	}
}

func TestLoadTerms_MissingFile(t *testing.T) {
	_, err := LoadTerms("", filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing terms file")
	}
}

func TestLoadTerms_Empty(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(fp, []byte("# only comments\n\n   \n"), 0644); err != nil {
		t.Fatalf("write terms file: %v", err)
	}
	_, err := LoadTerms(" , ,", fp)
	if !errors.Is(err, ErrNoTerms) {
		t.Fatalf("expected ErrNoTerms, got %v", err)
	}
}

func TestNormalizeTerm(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  foo  ", "foo"},
		{"foo bar", "foobar"},
		{"foo # comment", "foo"},
		{"# comment", ""},
		{"\t\n", ""},
		{"@scope/pkg@1.2.3", "@scope/pkg@1.2.3"},
	}
	for _, c := range cases {
		if got := NormalizeTerm(c.in); got != c.want {
			t.Errorf("NormalizeTerm(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
