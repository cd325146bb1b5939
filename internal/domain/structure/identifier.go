// Package structure provides the in-memory structure catalog: the identifier
// grammar for structure file names, the chain and base indexes built from a
// source listing, prefix search over those indexes and the residue-sequence
// substring scan.  Everything here is pure read logic over immutable data and
// is safe for concurrent use once a Catalog has been built.
package structure

import (
	"path"
	"regexp"
	"strings"
)

// identifierPattern accepts a base code optionally followed by one chain code.
var identifierPattern = regexp.MustCompile(`^([A-Za-z0-9]+)(?:_([A-Za-z0-9]+))?$`)

// Identifier is a parsed structure file stem.  BaseCode and Chain are upper
// case; Chain is empty for a chain-less structure.
type Identifier struct {
	BaseCode string
	Chain    string
}

// ParseIdentifier maps a filename stem to an Identifier.  It reports false for
// anything outside the grammar: empty stems, spaces, more than one underscore.
func ParseIdentifier(stem string) (Identifier, bool) {
	m := identifierPattern.FindStringSubmatch(stem)
	if m == nil {
		return Identifier{}, false
	}
	return Identifier{
		BaseCode: strings.ToUpper(m[1]),
		Chain:    strings.ToUpper(m[2]),
	}, true
}

// CanonicalID is the display form: "1A1P_A", or "1CN2" without a chain.
func (id Identifier) CanonicalID() string {
	if id.Chain == "" {
		return id.BaseCode
	}
	return id.BaseCode + "_" + id.Chain
}

// Key is the lower-cased CanonicalID used for every chain-level lookup.
func (id Identifier) Key() string {
	return strings.ToLower(id.CanonicalID())
}

// BaseKey is the lower-cased base code used for every base-level lookup.
func (id Identifier) BaseKey() string {
	return strings.ToLower(id.BaseCode)
}

// HasChain reports whether the identifier names a specific chain.
func (id Identifier) HasChain() bool {
	return id.Chain != ""
}

// StemFor returns the file name without ext when the extension matches
// case-insensitively.  ok is false for files with any other extension.
func StemFor(name, ext string) (stem string, ok bool) {
	name = path.Base(name)
	if ext == "" || len(name) < len(ext) {
		return "", false
	}
	cut := len(name) - len(ext)
	if !strings.EqualFold(name[cut:], ext) {
		return "", false
	}
	return name[:cut], true
}

var (
	baseKeyPattern  = regexp.MustCompile(`^[a-z0-9]+$`)
	fileKeyPattern  = regexp.MustCompile(`^[a-z0-9_]+$`)
	chainKeyPattern = regexp.MustCompile(`^[a-z0-9]+_[a-z0-9]+$`)
)

// ValidBaseKey reports whether key is a lower-case alphanumeric base key.
func ValidBaseKey(key string) bool { return baseKeyPattern.MatchString(key) }

// ValidFileKey reports whether key may name a chain-map entry in a file
// request.  Underscores are allowed anywhere.
func ValidFileKey(key string) bool { return fileKeyPattern.MatchString(key) }

// IsChainKey reports whether key has the "base_chain" shape.
func IsChainKey(key string) bool { return chainKeyPattern.MatchString(key) }

//Personal.AI order the ending
