package scanner

import (
	"encoding/json"
	"os"
)

// PackageRecord is a manifest's declared identity, used to build the
// derived name@version string tested against the matcher.
type PackageRecord struct {
	Name    string
	Version string
	Path    string
}

// ID returns the name@version form of the record.
func (r PackageRecord) ID() string {
	return r.Name + "@" + r.Version
}

// manifest mirrors the fields of package.json this tool consumes. Missing
// fields decode to their zero values; they are never an error.
type manifest struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Scripts map[string]string `json:"scripts"`
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
