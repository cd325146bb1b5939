package structure

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Index records
// ─────────────────────────────────────────────────────────────────────────────

// ChainRecord is one structure file: a specific chain ("1A1P_A") or a
// chain-less base ("1CN2").  Records are immutable once the Catalog is built.
type ChainRecord struct {
	// CanonicalID keeps the upper-case display form.
	CanonicalID string `json:"id"`

	// Key is the lower-cased CanonicalID stored alongside it.
	Key string `json:"key"`

	BaseCode   string `json:"pdb"`
	Chain      string `json:"chain"`
	SourceFile string `json:"file"`

	// Sequence is the residue string joined from the metadata dataset.  Empty
	// when no metadata row names this chain.
	Sequence string `json:"sequence,omitempty"`
}

// HasSequence reports whether a residue sequence is attached.
func (r *ChainRecord) HasSequence() bool {
	return r != nil && r.Sequence != ""
}

// BaseAggregate groups every file that shares one base code.  All three
// slices are sorted and free of duplicates; ChainIDs is never empty.
type BaseAggregate struct {
	BaseCode    string   `json:"pdb"`
	Chains      []string `json:"chains"`
	ChainIDs    []string `json:"chainIds"`
	SourceFiles []string `json:"files"`
}

// PreferredChainID picks the chain that represents the base when only one
// sequence is wanted: the "_A" chain if present, else the first chain id.
func (b *BaseAggregate) PreferredChainID() string {
	if b == nil || len(b.ChainIDs) == 0 {
		return ""
	}
	for _, id := range b.ChainIDs {
		if strings.HasSuffix(strings.ToLower(id), "_a") {
			return id
		}
	}
	return b.ChainIDs[0]
}

// SequenceHit is one result of a sequence substring scan.
type SequenceHit struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// Stats summarises a built Catalog.
type Stats struct {
	BaseCount  int `json:"pdb_count"`
	ChainCount int `json:"chain_count"`
	Sequences  int `json:"sequence_count"`
}

//Personal.AI order the ending
