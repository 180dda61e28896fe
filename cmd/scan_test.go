package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pkgsweep/config"
	"pkgsweep/ioc"
)

// resetTermFlags clears the package-level term flags shared by the scan
// and check commands so each test starts from an empty source set.
func resetTermFlags(t *testing.T) {
	t.Helper()
	origTerms, origFile := flagTerms, flagTermsFile
	flagTerms, flagTermsFile = "", ""
	t.Cleanup(func() { flagTerms, flagTermsFile = origTerms, origFile })
}

func TestCollectTerms_NoSources(t *testing.T) {
	resetTermFlags(t)

	cfg := config.Default()
	if _, err := collectTerms(context.Background(), cfg, nil); !errors.Is(err, ioc.ErrNoTerms) {
		t.Fatalf("err = %v, want ErrNoTerms", err)
	}
}

func TestCollectTerms_FeedSoleSourceFailure(t *testing.T) {
	resetTermFlags(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.FeedURL = srv.URL
	if _, err := collectTerms(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error when the failing feed is the only term source")
	}
}

func TestCollectTerms_FeedFailureDegrades(t *testing.T) {
	resetTermFlags(t)
	flagTerms = "badpkg@1.0.0"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.FeedURL = srv.URL
	terms, err := collectTerms(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("collectTerms: %v", err)
	}
	if len(terms) != 1 || terms[0] != "badpkg@1.0.0" {
		t.Fatalf("terms = %v, want the locally supplied term only", terms)
	}
}

func TestCollectTerms_ConfigFileTerms(t *testing.T) {
	resetTermFlags(t)

	cfg := config.Default()
	terms, err := collectTerms(context.Background(), cfg, []string{" badpkg@1.0.0 # from config", ""})
	if err != nil {
		t.Fatalf("collectTerms: %v", err)
	}
	if len(terms) != 1 || terms[0] != "badpkg@1.0.0" {
		t.Fatalf("terms = %v, want the normalized config-file term", terms)
	}
}
