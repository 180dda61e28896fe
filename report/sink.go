package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// ANSI sequences for the console writer.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

const (
	scopeColWidth    = 12
	locationColWidth = 52
)

// Sink accumulates matches and renders them as they arrive: a fixed-width
// three-column console view and, optionally, a persisted TSV report. All
// writes are serialized through one mutex so concurrent scanners can share
// a single sink. The TSV header is written exactly once, before any row.
type Sink struct {
	mu          sync.Mutex
	matches     []Match
	console     io.Writer
	tsv         io.Writer
	color       bool
	wroteHeader bool
}

// NewSink builds a sink writing human output to console and, when tsv is
// non-nil, tab-separated rows to tsv. Either writer may be nil.
func NewSink(console, tsv io.Writer) *Sink {
	return &Sink{
		console: console,
		tsv:     tsv,
		color:   isTerminal(console),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Add records one match and emits it to the configured writers.
func (s *Sink) Add(m Match) {
	m.Text = Truncate(m.Text, MaxMatchText)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.wroteHeader {
		s.wroteHeader = true
		if s.tsv != nil {
			fmt.Fprintf(s.tsv, "SCOPE\tLOCATION\tMATCH\n")
		}
		if s.console != nil {
			fmt.Fprintf(s.console, "%s%s%s%s\n",
				s.maybeBold(), pad("SCOPE", scopeColWidth)+pad("LOCATION", locationColWidth)+"MATCH", s.maybeReset(), "")
		}
	}

	s.matches = append(s.matches, m)

	if s.tsv != nil {
		fmt.Fprintf(s.tsv, "%s\t%s\t%s\n", m.Scope, m.Location, m.Text)
	}
	if s.console != nil {
		fmt.Fprintf(s.console, "%s%s%s%s%s\n",
			s.scopeColor(m.Scope), pad(string(m.Scope), scopeColWidth), s.maybeReset(),
			pad(m.Location, locationColWidth), m.Text)
	}
}

// Matches returns a copy of everything reported so far, in discovery order.
func (s *Sink) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// Count returns the number of matches reported so far.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (s *Sink) scopeColor(sc Scope) string {
	if !s.color {
		return ""
	}
	switch sc {
	case ScopeScripts, ScopeCode:
		return colorYellow
	default:
		return colorRed
	}
}

func (s *Sink) maybeBold() string {
	if !s.color {
		return ""
	}
	return colorBold
}

func (s *Sink) maybeReset() string {
	if !s.color {
		return ""
	}
	return colorReset
}

func pad(s string, w int) string {
	if runewidth.StringWidth(s) >= w {
		return runewidth.Truncate(s, w-2, "…") + " "
	}
	return runewidth.FillRight(s, w)
}
