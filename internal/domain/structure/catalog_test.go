package structure

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSequences map[string]string

func (m mapSequences) SequenceFor(k string) (string, bool) {
	s, ok := m[k]
	return s, ok
}

func sampleListing() []string {
	return []string{
		"1A1P_A.pdb",
		"1A1P_B.pdb",
		"1CN2.pdb",
		"1ahl_a.PDB",
		"2XYZ_C.pdb",
		"notes.txt",
		"bad name.pdb",
		"1A1P_A_B.pdb",
		".pdb",
	}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		stem  string
		ok    bool
		base  string
		chain string
	}{
		{"1A1P_A", true, "1A1P", "A"},
		{"1a1p_b", true, "1A1P", "B"},
		{"1CN2", true, "1CN2", ""},
		{"7abc_AB", true, "7ABC", "AB"},
		{"", false, "", ""},
		{"1A1P_A_B", false, "", ""},
		{"1A1P_", false, "", ""},
		{"_A", false, "", ""},
		{"bad name", false, "", ""},
		{"1a1p-a", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			id, ok := ParseIdentifier(tt.stem)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.base, id.BaseCode)
			assert.Equal(t, tt.chain, id.Chain)
		})
	}
}

func TestIdentifier_Forms(t *testing.T) {
	id := Identifier{BaseCode: "1A1P", Chain: "A"}
	assert.Equal(t, "1A1P_A", id.CanonicalID())
	assert.Equal(t, "1a1p_a", id.Key())
	assert.Equal(t, "1a1p", id.BaseKey())

	bare := Identifier{BaseCode: "1CN2"}
	assert.Equal(t, "1CN2", bare.CanonicalID())
	assert.False(t, bare.HasChain())
}

func TestStemFor(t *testing.T) {
	stem, ok := StemFor("1A1P_A.PDB", ".pdb")
	assert.True(t, ok)
	assert.Equal(t, "1A1P_A", stem)

	_, ok = StemFor("1A1P_A.cif", ".pdb")
	assert.False(t, ok)

	stem, ok = StemFor("nested/dir/1CN2.pdb", ".pdb")
	assert.True(t, ok)
	assert.Equal(t, "1CN2", stem)
}

func TestBuild_ExampleAggregates(t *testing.T) {
	c := Build([]string{"1A1P_A.pdb", "1A1P_B.pdb", "1CN2.pdb"}, BuildOptions{})

	agg, ok := c.Base("1a1p")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, agg.Chains)
	assert.Equal(t, []string{"1A1P_A", "1A1P_B"}, agg.ChainIDs)
	assert.Equal(t, []string{"1A1P_A.pdb", "1A1P_B.pdb"}, agg.SourceFiles)

	agg, ok = c.Base("1cn2")
	require.True(t, ok)
	assert.Equal(t, []string{}, agg.Chains)
	assert.Equal(t, []string{"1CN2"}, agg.ChainIDs)

	assert.Equal(t, Stats{BaseCount: 2, ChainCount: 3}, c.Stats())
}

func TestBuild_SkipsForeignAndMalformed(t *testing.T) {
	c := Build(sampleListing(), BuildOptions{})

	assert.Equal(t, 4, c.Stats().BaseCount)
	assert.Equal(t, 5, c.Stats().ChainCount)
	assert.Equal(t, 3, c.Skipped())

	rec, ok := c.Chain("1ahl_a")
	require.True(t, ok)
	assert.Equal(t, "1AHL_A", rec.CanonicalID)
	assert.Equal(t, "1ahl_a.PDB", rec.SourceFile)
}

func TestBuild_KeysAreLowerCaseAndRoundTrip(t *testing.T) {
	c := Build(sampleListing(), BuildOptions{})

	for _, k := range c.ChainKeys() {
		assert.Equal(t, strings.ToLower(k), k)
		rec, ok := c.Chain(k)
		require.True(t, ok)
		assert.Equal(t, k, strings.ToLower(rec.CanonicalID))
		assert.Equal(t, k, rec.Key)
	}
	for _, k := range c.BaseKeys() {
		assert.Equal(t, strings.ToLower(k), k)
	}
}

func TestBuild_EveryChainHasItsBase(t *testing.T) {
	c := Build(sampleListing(), BuildOptions{})

	for _, k := range c.ChainKeys() {
		rec, _ := c.Chain(k)
		if rec.Chain == "" {
			continue
		}
		agg, ok := c.Base(strings.ToLower(rec.BaseCode))
		require.True(t, ok, k)
		assert.Contains(t, agg.ChainIDs, rec.CanonicalID)
	}
	for _, k := range c.BaseKeys() {
		agg, _ := c.Base(k)
		assert.NotEmpty(t, agg.ChainIDs)
	}
}

func TestBuild_DuplicateStemsDeduplicate(t *testing.T) {
	c := Build([]string{"1a1p_a.pdb", "1A1P_A.pdb"}, BuildOptions{})

	agg, ok := c.Base("1a1p")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, agg.Chains)
	assert.Equal(t, []string{"1A1P_A"}, agg.ChainIDs)
	assert.Equal(t, []string{"1A1P_A.pdb", "1a1p_a.pdb"}, agg.SourceFiles)

	rec, _ := c.Chain("1a1p_a")
	assert.Equal(t, "1A1P_A.pdb", rec.SourceFile)
	assert.Equal(t, 1, c.Stats().ChainCount)
}

func TestBuild_DuplicateKeyLastFileWins(t *testing.T) {
	tests := []struct {
		listing []string
		want    string
	}{
		{[]string{"1a1p_a.pdb", "1A1P_A.pdb"}, "1A1P_A.pdb"},
		{[]string{"1A1P_A.pdb", "1a1p_a.pdb"}, "1a1p_a.pdb"},
		{[]string{"1A1P_A.pdb", "1CN2.pdb", "1a1p_A.PDB"}, "1a1p_A.PDB"},
	}
	for _, tt := range tests {
		c := Build(tt.listing, BuildOptions{})
		rec, ok := c.Chain("1a1p_a")
		require.True(t, ok)
		assert.Equal(t, tt.want, rec.SourceFile, "%v", tt.listing)
		assert.Equal(t, "1A1P_A", rec.CanonicalID)

		agg, _ := c.Base("1a1p")
		assert.Equal(t, []string{"A"}, agg.Chains)
	}
}

func TestBuild_IdempotentUnderShuffle(t *testing.T) {
	listing := sampleListing()
	want := Build(listing, BuildOptions{})

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), listing...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Build(shuffled, BuildOptions{})

		assert.Equal(t, want.ChainKeys(), got.ChainKeys())
		assert.Equal(t, want.BaseKeys(), got.BaseKeys())
		for _, k := range want.BaseKeys() {
			wa, _ := want.Base(k)
			ga, _ := got.Base(k)
			assert.Equal(t, wa, ga)
		}
		for _, k := range want.ChainKeys() {
			wr, _ := want.Chain(k)
			gr, _ := got.Chain(k)
			assert.Equal(t, wr, gr)
		}
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	listing := []string{"2B.pdb", "1A.pdb"}
	Build(listing, BuildOptions{})
	assert.Equal(t, []string{"2B.pdb", "1A.pdb"}, listing)
}

func TestBuild_SequenceJoin(t *testing.T) {
	seqs := mapSequences{"1a1p_a": "ACDEFGHIK", "9zzz_a": "NOPE"}
	c := Build([]string{"1A1P_A.pdb", "1A1P_B.pdb"}, BuildOptions{Sequences: seqs})

	rec, _ := c.Chain("1a1p_a")
	assert.Equal(t, "ACDEFGHIK", rec.Sequence)
	rec, _ = c.Chain("1a1p_b")
	assert.False(t, rec.HasSequence())
	assert.Equal(t, 1, c.Stats().Sequences)
}

func TestEmptyCatalog(t *testing.T) {
	c := Empty()
	assert.Empty(t, c.Search("1a", 20))
	assert.Empty(t, c.ScanSequences("ACDEF", 5, 5))
	assert.Empty(t, c.ChainIDs())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestPreferredChainID(t *testing.T) {
	agg := &BaseAggregate{ChainIDs: []string{"1ABC_B", "1ABC_A"}}
	assert.Equal(t, "1ABC_A", agg.PreferredChainID())

	agg = &BaseAggregate{ChainIDs: []string{"1ABC_C", "1ABC_D"}}
	assert.Equal(t, "1ABC_C", agg.PreferredChainID())

	var nilAgg *BaseAggregate
	assert.Equal(t, "", nilAgg.PreferredChainID())
}

//Personal.AI order the ending
