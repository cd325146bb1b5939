package similarity

import (
	"sort"
	"strings"
)

// AliasField is the row column listing the structure codes a row belongs to.
const AliasField = "PDB"

// Record is one dataset row.  Several aliases point at the same *Record.
type Record struct {
	Aliases []string
	Fields  map[string]interface{}
}

// Field returns the raw value of a row column and whether the column exists.
// A column that exists with a null value reports ("", true).
func (r *Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return "", false
	}
	return fieldText(v), true
}

// Index maps every normalized alias to its Record.  It is immutable after
// NewIndex returns.
type Index struct {
	byAlias map[string]*Record
	rows    int
}

// NewIndex builds an Index from decoded dataset rows.  Rows without a PDB
// column are skipped.  When two rows claim the same alias the later row wins.
func NewIndex(rows []map[string]interface{}) *Index {
	ix := &Index{byAlias: make(map[string]*Record, len(rows))}
	for _, row := range rows {
		raw, ok := row[AliasField]
		if !ok || raw == nil {
			continue
		}
		text := strings.TrimSpace(fieldText(raw))
		if text == "" {
			continue
		}

		rec := &Record{Fields: row}
		for _, part := range strings.Split(text, ";") {
			alias := NormalizeID(part)
			if alias == "" || ix.byAlias[alias] == rec {
				continue
			}
			rec.Aliases = append(rec.Aliases, alias)
			ix.byAlias[alias] = rec
		}
		if len(rec.Aliases) > 0 {
			ix.rows++
		}
	}
	return ix
}

// Lookup resolves any reference form ("1AHL", "1ahl_b.pdb") to its Record.
func (ix *Index) Lookup(id string) (*Record, bool) {
	if ix == nil {
		return nil, false
	}
	rec, ok := ix.byAlias[NormalizeID(id)]
	return rec, ok
}

// Len is the number of indexed aliases.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byAlias)
}

// Rows is the number of rows that contributed at least one alias.
func (ix *Index) Rows() int {
	if ix == nil {
		return 0
	}
	return ix.rows
}

// Aliases returns every indexed alias in sorted order.
func (ix *Index) Aliases() []string {
	out := make([]string, 0, ix.Len())
	if ix == nil {
		return out
	}
	for a := range ix.byAlias {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending
