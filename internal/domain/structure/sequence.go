package structure

import (
	"sort"
	"strings"
)

// MinSequenceQuery is the shortest query the scanner will run.
const MinSequenceQuery = 5

// NormalizeSequence trims and upper-cases residue text.
func NormalizeSequence(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ScanSequences returns up to limit chains whose sequence contains query as a
// substring.  Queries shorter than minLen return an empty result without
// scanning; minLen below MinSequenceQuery is raised to it.  Chains are visited
// in chain-key order, so the result is deterministic.
func (c *Catalog) ScanSequences(query string, minLen, limit int) []SequenceHit {
	if minLen < MinSequenceQuery {
		minLen = MinSequenceQuery
	}
	q := NormalizeSequence(query)
	if len(q) < minLen || limit <= 0 {
		return []SequenceHit{}
	}

	out := make([]SequenceHit, 0, limit)
	for _, k := range c.chainKeys {
		rec := c.chains[k]
		if !rec.HasSequence() || !strings.Contains(rec.Sequence, q) {
			continue
		}
		out = append(out, SequenceHit{ID: rec.CanonicalID, Sequence: rec.Sequence})
		if len(out) >= limit {
			break
		}
	}
	return out
}

// SequenceIndex lists every chain record that has a sequence and whose key
// has the "base_chain" form.  Ids are lower case, sequences upper case, and
// the list is in natural order ("1abc_2" before "1abc_10").
func (c *Catalog) SequenceIndex() []SequenceHit {
	out := make([]SequenceHit, 0, c.sequenced)
	for _, k := range c.chainKeys {
		rec := c.chains[k]
		if !rec.HasSequence() || !IsChainKey(k) {
			continue
		}
		out = append(out, SequenceHit{ID: k, Sequence: NormalizeSequence(rec.Sequence)})
	}
	sort.SliceStable(out, func(i, j int) bool { return NaturalLess(out[i].ID, out[j].ID) })
	return out
}

// BaseSequences returns the representative sequence of each requested base:
// the preferred chain's sequence (see BaseAggregate.PreferredChainID).  Keys
// that are not lower-case alphanumeric, unknown bases and bases whose
// preferred chain has no sequence are omitted.  At most max keys are read.
func (c *Catalog) BaseSequences(keys []string, max int) []SequenceHit {
	out := make([]SequenceHit, 0, len(keys))
	seen := 0
	for _, raw := range keys {
		key := strings.ToLower(strings.TrimSpace(raw))
		if !ValidBaseKey(key) {
			continue
		}
		if max > 0 && seen >= max {
			break
		}
		seen++

		agg, ok := c.bases[key]
		if !ok {
			continue
		}
		rec, ok := c.chains[strings.ToLower(agg.PreferredChainID())]
		if !ok || !rec.HasSequence() {
			continue
		}
		out = append(out, SequenceHit{ID: key, Sequence: NormalizeSequence(rec.Sequence)})
	}
	return out
}

// NaturalLess compares two strings treating runs of digits as numbers.
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

//Personal.AI order the ending
