package structure

import (
	"sort"
	"strings"
)

// normalizeQuery trims and lower-cases a prefix query.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// prefixRange returns the keys that start with prefix, at most limit of them,
// in ascending order.  keys must be sorted.  The lower bound is found by
// binary search and the walk stops at the first key that no longer matches.
func prefixRange(keys []string, prefix string, limit int) []string {
	if prefix == "" || limit <= 0 {
		return nil
	}
	start := sort.SearchStrings(keys, prefix)
	end := start
	for end < len(keys) && end-start < limit && strings.HasPrefix(keys[end], prefix) {
		end++
	}
	return keys[start:end]
}

// SearchBases returns up to limit base aggregates whose key starts with the
// query, in base-key order.
func (c *Catalog) SearchBases(query string, limit int) []*BaseAggregate {
	keys := prefixRange(c.baseKeys, normalizeQuery(query), limit)
	out := make([]*BaseAggregate, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.bases[k])
	}
	return out
}

// SearchChains returns up to limit canonical ids whose chain key starts with
// the query, in chain-key order.
func (c *Catalog) SearchChains(query string, limit int) []string {
	keys := prefixRange(c.chainKeys, normalizeQuery(query), limit)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.chains[k].CanonicalID)
	}
	return out
}

// Search is the two-tier identifier search.  Base codes are tried first: if
// any base matches, the result is every chain id of every matching base in
// base-key order, capped at limit.  Only when no base matches are chain keys
// searched directly.  An empty or blank query returns an empty result.
func (c *Catalog) Search(query string, limit int) []string {
	q := normalizeQuery(query)
	if q == "" || limit <= 0 {
		return []string{}
	}

	out := make([]string, 0, limit)
	start := sort.SearchStrings(c.baseKeys, q)
	for i := start; i < len(c.baseKeys) && len(out) < limit; i++ {
		k := c.baseKeys[i]
		if !strings.HasPrefix(k, q) {
			break
		}
		out = append(out, c.bases[k].ChainIDs...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) > 0 {
		return out
	}

	return append(out, c.SearchChains(q, limit)...)
}

//Personal.AI order the ending
