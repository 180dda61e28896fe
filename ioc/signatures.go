package ioc

import (
	"regexp"
	"strings"
)

// SignatureSet is one category of heuristic rules for the suspicious
// content scanner. Regexps are compiled case-insensitive; literals are
// matched as plain substrings, lowercased unless CaseSensitive.
type SignatureSet struct {
	Annotation    string
	Regexps       []*regexp.Regexp
	Literals      []string
	CaseSensitive bool
}

// Matches reports whether s triggers this category.
func (c *SignatureSet) Matches(s string) bool {
	for _, re := range c.Regexps {
		if re.MatchString(s) {
			return true
		}
	}
	probe := s
	if !c.CaseSensitive {
		probe = strings.ToLower(s)
	}
	for _, lit := range c.Literals {
		if strings.Contains(probe, lit) {
			return true
		}
	}
	return false
}

// DangerousShell flags shell commands that fetch and execute remote code,
// spawn interpreters inline, or evaluate dynamic code.
var DangerousShell = &SignatureSet{
	Annotation: "(dangerous shell)",
	Regexps: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(curl|wget)\b[^\n]*\b(https?|ipfs)://`),
		regexp.MustCompile(`(?i)\|\s*(ba|z)?sh\b`),
		regexp.MustCompile(`(?i)\bnode\s+(-e|--eval)\b`),
		regexp.MustCompile(`(?i)\bpowershell(\.exe)?\b`),
		regexp.MustCompile(`(?i)\beval\s*\(`),
		regexp.MustCompile(`(?i)\bnew\s+Function\s*\(`),
		regexp.MustCompile(`(?i)\bchild_process\b`),
		regexp.MustCompile(`(?i)\bspawn(Sync)?\s*\(`),
	},
}

// SuspiciousGlobals lists global symbols injected by the September 2025
// npm compromise payloads.
var SuspiciousGlobals = &SignatureSet{
	Annotation: "(suspicious global)",
	Literals: []string{
		"checkethereumw",
		"runmask",
		"newdlocal",
		"stealthproxycontrol",
		"_0x112fa8",
	},
}

// TrufflehogRefs flags references to the credential-scanning tool the
// Shai-Hulud worm drops and runs on infected hosts.
var TrufflehogRefs = &SignatureSet{
	Annotation: "(trufflehog ref)",
	Literals: []string{
		"trufflehog",
		"truffler-cache",
		"trufflesecrets",
	},
}

// WalletAddress is the attacker-controlled Ethereum address hardcoded in
// the crypto-clipper stage of the campaign. Exact literal, case-sensitive.
var WalletAddress = &SignatureSet{
	Annotation:    "(eth addr)",
	Literals:      []string{"0xFc4a4858bafef54D1b1d7697bfb5c52F4c166976"},
	CaseSensitive: true,
}

// ScriptSignatureSets are the categories applied to manifest script
// entries; each triggered category is reported separately.
var ScriptSignatureSets = []*SignatureSet{
	DangerousShell,
	SuspiciousGlobals,
	TrufflehogRefs,
	WalletAddress,
}

// AnySignature reports whether a line of code or text triggers any
// category. Used by the code/text scan, which reports per line rather than
// per category.
func AnySignature(line string) bool {
	for _, set := range ScriptSignatureSets {
		if set.Matches(line) {
			return true
		}
	}
	return false
}
