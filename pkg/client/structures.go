package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// StructuresClient calls the /api/pdb and /api/meta endpoints.
type StructuresClient struct {
	client *Client
}

// SequenceHit is a structure id with its residue sequence.
type SequenceHit struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// Base describes every chain file of one structure code.
type Base struct {
	PDB      string   `json:"pdb"`
	Chains   []string `json:"chains"`
	ChainIDs []string `json:"chainIds"`
	Files    []string `json:"files"`
}

// Stats is the /api/pdb/stats answer.
type Stats struct {
	Source        string `json:"source"`
	PDBCount      int    `json:"pdb_count"`
	ChainCount    int    `json:"chain_count"`
	SequenceCount int    `json:"sequence_count"`
	SkippedFiles  int    `json:"skipped_files"`
}

type stringList struct {
	Results []string `json:"results"`
}

type hitList struct {
	Results []SequenceHit `json:"results"`
}

func queryPath(path string, q string, limit int) string {
	v := url.Values{}
	v.Set("q", q)
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return path + "?" + v.Encode()
}

// Search runs the identifier prefix search.  limit <= 0 uses the server
// default.
func (s *StructuresClient) Search(ctx context.Context, query string, limit int) ([]string, error) {
	var out stringList
	if err := s.client.get(ctx, queryPath("/api/pdb/search", query, limit), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SequenceSearch finds chains whose sequence contains query.
func (s *StructuresClient) SequenceSearch(ctx context.Context, query string, limit int) ([]SequenceHit, error) {
	var out hitList
	if err := s.client.get(ctx, queryPath("/api/pdb/sequence-search", query, limit), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// All lists every canonical chain id.
func (s *StructuresClient) All(ctx context.Context) ([]string, error) {
	var out stringList
	if err := s.client.get(ctx, "/api/pdb/all", &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SequenceIndex lists every chain that has a sequence.
func (s *StructuresClient) SequenceIndex(ctx context.Context) ([]SequenceHit, error) {
	var out hitList
	if err := s.client.get(ctx, "/api/pdb/seq-index", &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Sequences returns the representative sequence of each base code.
func (s *StructuresClient) Sequences(ctx context.Context, ids []string) ([]SequenceHit, error) {
	var out hitList
	body := map[string][]string{"ids": ids}
	if err := s.client.post(ctx, "/api/pdb/sequences", body, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Stats returns the catalog counters.
func (s *StructuresClient) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := s.client.get(ctx, "/api/pdb/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Base returns the aggregate of a structure code.
func (s *StructuresClient) Base(ctx context.Context, pdb string) (*Base, error) {
	var out Base
	if err := s.client.get(ctx, "/api/pdb/"+url.PathEscape(pdb), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chain opens the structure file of one chain.  The caller closes it.
func (s *StructuresClient) Chain(ctx context.Context, pdb, chain string) (io.ReadCloser, error) {
	return s.open(ctx, "/api/pdb/"+url.PathEscape(pdb)+"/"+url.PathEscape(chain))
}

// File opens a structure file by chain id ("1A1P_A") or chain-less id.
func (s *StructuresClient) File(ctx context.Context, id string) (io.ReadCloser, error) {
	return s.open(ctx, "/api/pdb/file/"+url.PathEscape(id))
}

func (s *StructuresClient) open(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := s.client.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Metadata returns the metadata row of a structure file.
func (s *StructuresClient) Metadata(ctx context.Context, id string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := s.client.get(ctx, "/api/meta/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

//Personal.AI order the ending
