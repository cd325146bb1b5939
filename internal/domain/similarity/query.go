package similarity

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/turtacn/cyclome/pkg/errors"
)

// Result is the neighbor list of one structure at one threshold.
type Result struct {
	ID        string   `json:"pdbId"`
	Threshold float64  `json:"threshold"`
	Key       string   `json:"key"`
	Count     int      `json:"count"`
	Neighbors []string `json:"results"`
}

// BatchItem is one entry of a batch response.  Exactly one of Error or the
// Result fields is meaningful.
type BatchItem struct {
	ID        string   `json:"pdbId"`
	Threshold float64  `json:"threshold"`
	Key       string   `json:"key"`
	Count     int      `json:"count"`
	Neighbors []string `json:"results"`
	Truncated bool     `json:"truncated,omitempty"`
	Error     string   `json:"error,omitempty"`
	Code      string   `json:"code,omitempty"`
}

// MarshalJSON writes failed items as {pdbId, error, code} only.
func (b BatchItem) MarshalJSON() ([]byte, error) {
	if b.Error != "" {
		return json.Marshal(struct {
			ID    string `json:"pdbId"`
			Error string `json:"error"`
			Code  string `json:"code,omitempty"`
		}{b.ID, b.Error, b.Code})
	}
	type plain BatchItem
	return json.Marshal(plain(b))
}

// BatchResult wraps the per-id items of a batch query.
type BatchResult struct {
	Threshold float64     `json:"threshold"`
	Key       string      `json:"key"`
	Count     int         `json:"count"`
	Items     []BatchItem `json:"items"`
	Truncated bool        `json:"truncated,omitempty"`
}

// BatchOptions bounds a batch query.  Zero values disable the bound.
type BatchOptions struct {
	// MaxIDs rejects batches with more valid ids than this.
	MaxIDs int

	// MaxNeighbors is the total neighbor budget shared by every item.  Items
	// after the budget is spent are returned empty and flagged truncated.
	MaxNeighbors int
}

// checkThreshold rejects anything that is not a plain decimal.
func checkThreshold(t string) error {
	if !ValidThreshold(strings.TrimSpace(t)) {
		return errors.New(errors.ErrCodeSimilarityThresholdInvalid, "invalid threshold").WithDetail(t)
	}
	return nil
}

// neighbors resolves the neighbor list of an already-normalized id.
func (ix *Index) neighbors(id, field string) ([]string, error) {
	rec, ok := ix.Lookup(id)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSimilarityRecordNotFound, "no similarity record for %s", id)
	}
	raw, ok := rec.Field(field)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSimilarityFieldNotFound, "no field %s for %s", field, id)
	}

	ids := SplitIDs(raw)
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, n := range ids {
		if n == id {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// Neighbors answers a single query: the deduplicated neighbors of id at
// threshold, in dataset order, never including id itself.  A null field
// yields an empty list.
func (ix *Index) Neighbors(id, threshold string) (*Result, error) {
	norm := NormalizeID(id)
	if norm == "" {
		return nil, errors.New(errors.ErrCodeSimilarityIDInvalid, "invalid pdbId")
	}
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}

	threshold = strings.TrimSpace(threshold)
	field := FieldName(threshold)
	list, err := ix.neighbors(norm, field)
	if err != nil {
		return nil, err
	}
	return &Result{
		ID:        norm,
		Threshold: thresholdValue(threshold),
		Key:       field,
		Count:     len(list),
		Neighbors: list,
	}, nil
}

// NormalizeBatch normalizes ids and drops the ones that normalize to empty.
func NormalizeBatch(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		out = append(out, SplitIDs(raw)...)
	}
	return out
}

// Batch answers several queries at one threshold.  Ids are normalized and
// empty ones dropped; no valid ids, or more than opts.MaxIDs, is invalid
// input.  Each id succeeds or fails on its own and failures are reported in
// its item.
func (ix *Index) Batch(ids []string, threshold string, opts BatchOptions) (*BatchResult, error) {
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}
	valid := NormalizeBatch(ids)
	if len(valid) == 0 {
		return nil, errors.New(errors.ErrCodeSimilarityBatchInvalid, "no valid ids provided")
	}
	if opts.MaxIDs > 0 && len(valid) > opts.MaxIDs {
		return nil, errors.Newf(errors.ErrCodeSimilarityBatchInvalid, "too many ids: %d > %d", len(valid), opts.MaxIDs)
	}

	threshold = strings.TrimSpace(threshold)
	field := FieldName(threshold)
	value := thresholdValue(threshold)
	budget := opts.MaxNeighbors
	res := &BatchResult{
		Threshold: value,
		Key:       field,
		Count:     len(valid),
		Items:     make([]BatchItem, 0, len(valid)),
	}

	for _, id := range valid {
		list, err := ix.neighbors(id, field)
		if err != nil {
			res.Items = append(res.Items, BatchItem{
				ID:    id,
				Error: errorMessage(err),
				Code:  errors.GetCode(err).String(),
			})
			continue
		}

		item := BatchItem{ID: id, Threshold: value, Key: field}
		if opts.MaxNeighbors > 0 && len(list) > budget {
			list = list[:budget]
			item.Truncated = true
			res.Truncated = true
		}
		if opts.MaxNeighbors > 0 {
			budget -= len(list)
		}
		item.Neighbors = list
		item.Count = len(list)
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func errorMessage(err error) string {
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

//Personal.AI order the ending
