package client

import (
	"context"
	"net/url"
	"strings"
)

// SimilarityClient calls the /api/similarity endpoints.
type SimilarityClient struct {
	client *Client
}

// SimilarityResult is the neighbor list of one structure.
type SimilarityResult struct {
	PDBID     string   `json:"pdbId"`
	Threshold float64  `json:"threshold"`
	Key       string   `json:"key"`
	Count     int      `json:"count"`
	Results   []string `json:"results"`
	Truncated bool     `json:"truncated,omitempty"`
}

// BatchItem is one entry of a batch answer.  Error and Code are set when the
// id failed on its own.
type BatchItem struct {
	SimilarityResult
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Failed reports whether the item carries an error instead of neighbors.
func (b BatchItem) Failed() bool { return b.Error != "" }

// BatchResult is the batch answer.
type BatchResult struct {
	Threshold float64     `json:"threshold"`
	Key       string      `json:"key"`
	Count     int         `json:"count"`
	Items     []BatchItem `json:"items"`
	Truncated bool        `json:"truncated,omitempty"`
}

// SimilarityHealth is the similarity dataset status.
type SimilarityHealth struct {
	OK      bool   `json:"ok"`
	Indexed int    `json:"indexed"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Path    string `json:"simPath"`
}

// Get returns the neighbors of id at threshold.
func (s *SimilarityClient) Get(ctx context.Context, id, threshold string) (*SimilarityResult, error) {
	var out SimilarityResult
	path := "/api/similarity/" + url.PathEscape(id) + "/" + url.PathEscape(threshold)
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Batch looks up several ids at one threshold.  Ids are sent in the POST
// body, so the list is not bounded by URL length.
func (s *SimilarityClient) Batch(ctx context.Context, threshold string, ids []string) (*BatchResult, error) {
	var out BatchResult
	path := "/api/similarity/batch/" + url.PathEscape(threshold)
	if err := s.client.post(ctx, path, map[string][]string{"ids": ids}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchQuery is Batch through the GET form, ids joined with commas.
func (s *SimilarityClient) BatchQuery(ctx context.Context, threshold string, ids []string) (*BatchResult, error) {
	var out BatchResult
	v := url.Values{}
	v.Set("ids", strings.Join(ids, ","))
	path := "/api/similarity/batch/" + url.PathEscape(threshold) + "?" + v.Encode()
	if err := s.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the similarity dataset loaded.  A dataset that
// failed to load comes back as an *APIError with status 500.
func (s *SimilarityClient) Health(ctx context.Context) (*SimilarityHealth, error) {
	var out SimilarityHealth
	if err := s.client.get(ctx, "/api/similarity/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
