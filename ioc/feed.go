package ioc

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultFeedURL is the Wiz Research list of packages compromised in the
// Shai-Hulud npm supply chain campaign.
const DefaultFeedURL = "https://raw.githubusercontent.com/wiz-sec-public/wiz-research-iocs/main/reports/shai-hulud-2-packages.csv"

// FetchFeed downloads a Package,Version CSV feed and expands it into
// search terms. Version cells may carry multiple constraints separated by
// "||", each optionally prefixed with '='; every constraint yields one
// name@version term. A package row without usable versions yields a bare
// name term.
func FetchFeed(ctx context.Context, url string, timeout time.Duration) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: HTTP %d", resp.StatusCode)
	}
	return ParseFeedCSV(resp.Body)
}

// ParseFeedCSV reads the Package,Version CSV format used by the public IoC
// feeds. The header row is skipped case-insensitively; malformed or partial
// rows are ignored rather than failing the whole feed.
func ParseFeedCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var terms []string
	row := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse feed CSV: %w", err)
		}
		row++
		if len(rec) == 0 {
			continue
		}
		if row == 1 && len(rec) >= 2 &&
			strings.EqualFold(strings.TrimSpace(rec[0]), "package") &&
			strings.EqualFold(strings.TrimSpace(rec[1]), "version") {
			continue
		}

		name := NormalizeTerm(rec[0])
		if name == "" {
			continue
		}
		var versions []string
		if len(rec) >= 2 {
			versions = parseVersionSpec(rec[1])
		}
		if len(versions) == 0 {
			terms = append(terms, name)
			continue
		}
		for _, v := range versions {
			terms = append(terms, name+"@"+v)
		}
	}
	return terms, nil
}

// parseVersionSpec splits a feed version cell such as "= 0.6.1 || = 0.6.2"
// into its individual version values.
func parseVersionSpec(spec string) []string {
	var versions []string
	for _, part := range strings.Split(spec, "||") {
		p := strings.TrimSpace(part)
		p = strings.TrimSpace(strings.TrimPrefix(p, "="))
		if p != "" {
			versions = append(versions, p)
		}
	}
	return versions
}
