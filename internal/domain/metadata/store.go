// Package metadata holds the per-structure metadata dataset: arbitrary column
// rows keyed by the structure files they describe.  It answers record lookups
// and supplies residue sequences to the structure catalog at build time.
package metadata

import (
	"fmt"
	"path"
	"strings"
)

// Column names the store reads.  Every other column is passed through.
const (
	ColumnPDB      = "PDB"
	ColumnSequence = "Sequence"
)

// Record is one metadata row as decoded from the dataset.
type Record map[string]interface{}

// Store indexes metadata rows by their upper-case file entries
// ("1AG7_A.PDB") and by lower-case chain key ("1ag7_a").  Immutable after
// NewStore returns.
type Store struct {
	rows      []Record
	byEntry   map[string]int
	sequences map[string]string
}

// NewStore indexes rows.  When several rows list the same entry the first row
// wins, for lookups and for sequences alike.
func NewStore(rows []map[string]interface{}) *Store {
	s := &Store{
		rows:      make([]Record, 0, len(rows)),
		byEntry:   make(map[string]int),
		sequences: make(map[string]string),
	}
	for _, row := range rows {
		idx := len(s.rows)
		s.rows = append(s.rows, Record(row))

		seq := strings.ToUpper(strings.TrimSpace(text(row[ColumnSequence])))
		for _, entry := range Entries(row) {
			if _, taken := s.byEntry[entry]; !taken {
				s.byEntry[entry] = idx
			}
			key := ChainKey(entry)
			if key == "" || seq == "" {
				continue
			}
			if _, taken := s.sequences[key]; !taken {
				s.sequences[key] = seq
			}
		}
	}
	return s
}

// Entries returns the trimmed, upper-cased, non-empty ';'-separated entries of
// a row's PDB column.
func Entries(row map[string]interface{}) []string {
	raw := text(row[ColumnPDB])
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChainKey strips the file extension from an entry and lower-cases it:
// "1AG7_A.PDB" → "1ag7_a".
func ChainKey(entry string) string {
	entry = strings.TrimSpace(entry)
	entry = strings.TrimSuffix(entry, path.Ext(entry))
	return strings.ToLower(entry)
}

// Lookup finds the row describing id.  The target entry is UPPER(id)+".PDB",
// so "1ag7_a" matches a row listing "1AG7_A.pdb".
func (s *Store) Lookup(id string) (Record, bool) {
	if s == nil {
		return nil, false
	}
	target := strings.ToUpper(strings.TrimSpace(id)) + ".PDB"
	idx, ok := s.byEntry[target]
	if !ok {
		return nil, false
	}
	return s.rows[idx], true
}

// SequenceFor returns the sequence joined to a lower-case chain key.
func (s *Store) SequenceFor(chainKey string) (string, bool) {
	if s == nil {
		return "", false
	}
	seq, ok := s.sequences[chainKey]
	return seq, ok
}

// Len is the number of rows.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// SequenceCount is the number of chain keys that have a sequence.
func (s *Store) SequenceCount() int {
	if s == nil {
		return 0
	}
	return len(s.sequences)
}

func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

//Personal.AI order the ending
