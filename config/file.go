package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the optional TOML configuration file. It supplies defaults;
// command-line flags override whatever it sets.
type File struct {
	Roots      []string `toml:"roots"`
	Terms      []string `toml:"terms"`
	Global     bool     `toml:"global"`
	NvmDir     string   `toml:"nvm_dir"`
	NaveDir    string   `toml:"nave_dir"`
	Suspicious string   `toml:"suspicious"`
	Report     string   `toml:"report"`
	Feed       string   `toml:"feed"`
	Workers    int      `toml:"workers"`
	TimeoutSec int      `toml:"timeout_seconds"`
}

// LoadFile decodes a TOML configuration file.
func LoadFile(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies every set field of the file onto cfg. Zero values are left
// alone so flag and built-in defaults survive.
func (f *File) Apply(cfg *Config) {
	if len(f.Roots) > 0 {
		cfg.Roots = f.Roots
	}
	if f.Global {
		cfg.CheckGlobal = true
	}
	if f.NvmDir != "" {
		cfg.NvmDir = f.NvmDir
	}
	if f.NaveDir != "" {
		cfg.NaveDir = f.NaveDir
	}
	if f.Suspicious != "" {
		cfg.Suspicious = SuspiciousMode(f.Suspicious)
	}
	if f.Report != "" {
		cfg.ReportPath = f.Report
	}
	if f.Feed != "" {
		cfg.FeedURL = f.Feed
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if f.TimeoutSec > 0 {
		cfg.Timeout = time.Duration(f.TimeoutSec) * time.Second
	}
}
