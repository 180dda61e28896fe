// Package config holds the immutable run configuration built once by the
// CLI and passed by reference into the scanners.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// SuspiciousMode selects how the heuristic content scanner runs.
type SuspiciousMode string

const (
	// SuspiciousOff disables the heuristic scan entirely.
	SuspiciousOff SuspiciousMode = "off"
	// SuspiciousScripts scans manifest script entries plus a curated set
	// of script/markup/container files.
	SuspiciousScripts SuspiciousMode = "scripts"
	// SuspiciousBroad scans every file under the roots except dependency
	// directories, VCS metadata and lockfiles.
	SuspiciousBroad SuspiciousMode = "broad"
)

// Config is the full set of options for one scan run.
type Config struct {
	Roots       []string
	CheckGlobal bool
	NvmDir      string
	NaveDir     string
	Suspicious  SuspiciousMode
	ReportPath  string
	FeedURL     string
	Workers     int
	Timeout     time.Duration
}

// Default returns the baseline configuration: scan the current directory,
// no global check, heuristics off.
func Default() *Config {
	return &Config{
		Roots:      []string{"."},
		Suspicious: SuspiciousOff,
		Workers:    defaultWorkers(),
		Timeout:    10 * time.Second,
	}
}

func defaultWorkers() int {
	w := runtime.NumCPU() * 8
	if w < 64 {
		w = 64
	}
	return w
}

// Validate checks invariants and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Suspicious {
	case SuspiciousOff, SuspiciousScripts, SuspiciousBroad:
	default:
		return fmt.Errorf("invalid suspicious mode %q (want off, scripts or broad)", c.Suspicious)
	}
	if len(c.Roots) == 0 {
		c.Roots = []string{"."}
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers()
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
