package structure

import (
	"slices"
	"sort"
)

// SequenceLookup supplies residue sequences for chain keys during a build.
// The metadata store implements it.
type SequenceLookup interface {
	SequenceFor(chainKey string) (string, bool)
}

// BuildOptions controls how a listing is turned into a Catalog.
type BuildOptions struct {
	// Extension filters the listing, compared case-insensitively.  Defaults to ".pdb".
	Extension string

	// Sequences is optional.  When nil no record carries a sequence.
	Sequences SequenceLookup
}

// Catalog is the identifier index: a chain-level map and a base-level
// aggregate map, each with its keys held in a separately sorted slice.  A
// Catalog is never mutated after Build returns.
type Catalog struct {
	chains    map[string]*ChainRecord
	bases     map[string]*BaseAggregate
	chainKeys []string
	baseKeys  []string

	skipped   int
	sequenced int
}

// Empty returns a Catalog with no entries.  Every query against it returns an
// empty result.
func Empty() *Catalog {
	return &Catalog{
		chains: map[string]*ChainRecord{},
		bases:  map[string]*BaseAggregate{},
	}
}

// Build indexes a listing of file names.  Names with another extension or a
// stem outside the identifier grammar are skipped.  When two files map to the
// same chain key the later one in the listing wins.
func Build(names []string, opts BuildOptions) *Catalog {
	ext := opts.Extension
	if ext == "" {
		ext = ".pdb"
	}

	c := Empty()
	for _, name := range names {
		stem, ok := StemFor(name, ext)
		if !ok {
			continue
		}
		id, ok := ParseIdentifier(stem)
		if !ok {
			c.skipped++
			continue
		}
		c.insert(id, name)
	}

	for _, b := range c.bases {
		b.Chains = sortedUnique(b.Chains)
		b.ChainIDs = sortedUnique(b.ChainIDs)
		b.SourceFiles = sortedUnique(b.SourceFiles)
	}

	c.chainKeys = make([]string, 0, len(c.chains))
	for k, rec := range c.chains {
		c.chainKeys = append(c.chainKeys, k)
		if opts.Sequences != nil {
			if seq, ok := opts.Sequences.SequenceFor(k); ok && seq != "" {
				rec.Sequence = seq
				c.sequenced++
			}
		}
	}
	sort.Strings(c.chainKeys)

	c.baseKeys = make([]string, 0, len(c.bases))
	for k := range c.bases {
		c.baseKeys = append(c.baseKeys, k)
	}
	sort.Strings(c.baseKeys)

	return c
}

func (c *Catalog) insert(id Identifier, file string) {
	canonical := id.CanonicalID()
	key := id.Key()

	c.chains[key] = &ChainRecord{
		CanonicalID: canonical,
		Key:         key,
		BaseCode:    id.BaseCode,
		Chain:       id.Chain,
		SourceFile:  file,
	}

	baseKey := id.BaseKey()
	agg, ok := c.bases[baseKey]
	if !ok {
		agg = &BaseAggregate{BaseCode: id.BaseCode, Chains: []string{}}
		c.bases[baseKey] = agg
	}
	if id.HasChain() {
		agg.Chains = append(agg.Chains, id.Chain)
	}
	agg.ChainIDs = append(agg.ChainIDs, canonical)
	agg.SourceFiles = append(agg.SourceFiles, file)
}

func sortedUnique(in []string) []string {
	sort.Strings(in)
	return slices.Compact(in)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────────────────

// Chain returns the record stored under a lower-cased chain key.
func (c *Catalog) Chain(key string) (*ChainRecord, bool) {
	r, ok := c.chains[key]
	return r, ok
}

// Base returns the aggregate stored under a lower-cased base key.
func (c *Catalog) Base(key string) (*BaseAggregate, bool) {
	b, ok := c.bases[key]
	return b, ok
}

// ChainIDs returns every canonical id in chain-key order.
func (c *Catalog) ChainIDs() []string {
	out := make([]string, 0, len(c.chainKeys))
	for _, k := range c.chainKeys {
		out = append(out, c.chains[k].CanonicalID)
	}
	return out
}

// ChainKeys returns a copy of the sorted chain keys.
func (c *Catalog) ChainKeys() []string { return slices.Clone(c.chainKeys) }

// BaseKeys returns a copy of the sorted base keys.
func (c *Catalog) BaseKeys() []string { return slices.Clone(c.baseKeys) }

// Skipped is the number of files with the right extension whose stem did not
// parse as an identifier.
func (c *Catalog) Skipped() int { return c.skipped }

// Stats reports the catalog's sizes.
func (c *Catalog) Stats() Stats {
	return Stats{
		BaseCount:  len(c.bases),
		ChainCount: len(c.chains),
		Sequences:  c.sequenced,
	}
}

//Personal.AI order the ending
