// Package similarity indexes a precomputed pairwise-similarity dataset and
// answers threshold-keyed neighbor queries.  Each dataset row lists one or
// more structure codes that share a similarity profile; every code becomes an
// alias of the same shared Record.
package similarity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldPrefix is prepended to a threshold to form the row field name.
const FieldPrefix = "similarity_"

var thresholdPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// NormalizeID reduces any structure reference to its base code: trimmed,
// lower-cased, without a trailing ".pdb", and cut at the first underscore.
// "1WT8_A.pdb" → "1wt8".
func NormalizeID(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, ".pdb")
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[:i]
	}
	return s
}

// SplitIDs splits a neighbor list on ';' or ',' and normalizes every entry.
// Empty entries are dropped; duplicates are kept.
func SplitIDs(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := NormalizeID(p); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// ValidThreshold reports whether t is a non-negative decimal like "75" or "92.5".
func ValidThreshold(t string) bool {
	return thresholdPattern.MatchString(t)
}

// FieldName returns the row field holding neighbors at threshold t.
func FieldName(t string) string {
	return FieldPrefix + t
}

// thresholdValue parses a validated threshold for display.
func thresholdValue(t string) float64 {
	v, _ := strconv.ParseFloat(t, 64)
	return v
}

// fieldText renders a decoded JSON value as a delimiter-joined list.  null
// becomes the empty string; arrays are joined with ','.
func fieldText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, fieldText(e))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}

//Personal.AI order the ending
