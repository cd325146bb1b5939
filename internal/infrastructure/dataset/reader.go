// Package dataset reads the JSON row files behind the similarity index and
// the metadata store.  A dataset file is a single JSON array of objects.
package dataset

import (
	"encoding/json"
	"io"
	"os"

	"github.com/turtacn/cyclome/pkg/errors"
)

// Row is one decoded dataset object.
type Row = map[string]interface{}

// ReadFile decodes the array of rows stored at path.  A missing or unreadable
// file is ErrCodeStorageError; malformed JSON is ErrCodeSerialization.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "dataset file unreadable").WithDetail(path)
	}
	defer f.Close()

	rows, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "dataset file malformed").WithDetail(path)
	}
	return rows, nil
}

// Decode reads one JSON array of objects from r.  Array elements that are not
// objects are dropped.
func Decode(r io.Reader) ([]Row, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(raw))
	for _, msg := range raw {
		var row Row
		if err := json.Unmarshal(msg, &row); err != nil || row == nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

//Personal.AI order the ending
