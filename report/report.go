// Package report holds the finding types shared by every scanner and the
// sink that accumulates and renders them.
package report

// Scope identifies the installation surface a match was found on.
type Scope string

const (
	ScopeLockfile Scope = "LOCKFILE"
	ScopeGlobal   Scope = "NPM-GLOBAL"
	ScopeNvm      Scope = "NVM"
	ScopeNave     Scope = "NAVE"
	ScopeScripts  Scope = "SCRIPTS"
	ScopeCode     Scope = "CODE"
)

// MaxMatchText caps the matched-text column of a reported match.
const MaxMatchText = 200

// Match is a single reported hit: where it was found and what was matched.
type Match struct {
	Scope    Scope
	Location string
	Text     string
}

// Truncate limits s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
