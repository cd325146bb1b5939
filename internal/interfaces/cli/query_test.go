package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyclome/internal/config"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/pkg/client"
)

const (
	testMetadata   = `[{"PDB":"1AG7_A.pdb","Sequence":"cyiqncplgg","Name":"conotoxin"}]`
	testSimilarity = `[{"PDB":"1A1P","similarity_75":"1cn2;1ag7_A"}]`
)

// writeCatalog lays out a structure directory plus both datasets and returns
// a config pointing at them.
func writeCatalog(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "pdb")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"1A1P_A.pdb", "1A1P_B.pdb", "1CN2.pdb", "1AG7_A.pdb"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("HEADER "+name+"\n"), 0o644))
	}
	metaPath := filepath.Join(root, "metadata.json")
	simPath := filepath.Join(root, "similarity.json")
	require.NoError(t, os.WriteFile(metaPath, []byte(testMetadata), 0o644))
	require.NoError(t, os.WriteFile(simPath, []byte(testSimilarity), 0o644))

	cfg := config.NewDefaultConfig()
	cfg.Server.Mode = gin.TestMode
	cfg.Catalog.StructureDir = dir
	cfg.Catalog.MetadataPath = metaPath
	cfg.Similarity.DatasetPath = simPath
	return cfg
}

// newTestServer serves a fully wired App and returns its URL.
func newTestServer(t *testing.T) string {
	t.Helper()
	app, err := NewApp(context.Background(), writeCatalog(t), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv.URL
}

// runCLI executes the root command and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCmd(t *testing.T) {
	url := newTestServer(t)

	out, err := runCLI(t, "--server", url, "search", "1a", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "1A1P_A\n1A1P_B\n", out)

	out, err = runCLI(t, "--server", url, "-o", "json", "search", "1cn")
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []string{"1CN2"}, ids)
}

func TestSeqCmd(t *testing.T) {
	url := newTestServer(t)

	out, err := runCLI(t, "--server", url, "seq", "iqncp")
	require.NoError(t, err)
	assert.Equal(t, "1AG7_A\tCYIQNCPLGG\n", out)

	out, err = runCLI(t, "--server", url, "-o", "table", "seq", "IQNCP")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQUENCE")
	assert.Contains(t, out, "CYIQNCPLGG")
}

func TestSimilarCmd(t *testing.T) {
	url := newTestServer(t)

	out, err := runCLI(t, "--server", url, "similar", "1A1P_A", "75")
	require.NoError(t, err)
	assert.Equal(t, "1a1p @ 75 (similarity_75): 2 neighbors\n1cn2\n1ag7\n", out)

	out, err = runCLI(t, "--server", url, "-o", "json", "similar", "1a1p", "75")
	require.NoError(t, err)
	var res client.SimilarityResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"1cn2", "1ag7"}, res.Results)
}

func TestSimilarCmd_APIError(t *testing.T) {
	url := newTestServer(t)

	_, err := runCLI(t, "--server", url, "similar", "1a1p", "7x")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, "SIM_002", apiErr.Code)
}

func TestSimilarBatchCmd(t *testing.T) {
	url := newTestServer(t)

	out, err := runCLI(t, "--server", url, "-o", "table", "similar-batch", "75", "1a1p,9xyz")
	require.NoError(t, err)
	assert.Contains(t, out, "NEIGHBORS")
	assert.Contains(t, out, "1cn2,1ag7")
	assert.Contains(t, out, "SIM_003")

	out, err = runCLI(t, "--server", url, "-o", "json", "similar-batch", "75", "1a1p", "--get")
	require.NoError(t, err)
	var res client.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Items[0].Count)
}

func TestSimilarBatchCmd_NeedsIDs(t *testing.T) {
	_, err := runCLI(t, "--server", "http://localhost:1", "similar-batch", "75")
	assert.Error(t, err)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"1a1p", "1cn2", "1ag7"}, splitIDs([]string{"1a1p, 1cn2", " ", "1ag7,"}))
	assert.Nil(t, splitIDs([]string{" , "}))
}

func TestBatchView(t *testing.T) {
	v := batchView{&client.BatchResult{
		Threshold: 90,
		Key:       "similarity_90",
		Count:     2,
		Truncated: true,
		Items: []client.BatchItem{
			{SimilarityResult: client.SimilarityResult{PDBID: "1a1p", Count: 1, Results: []string{"1cn2"}}},
			{SimilarityResult: client.SimilarityResult{PDBID: "9xyz"}, Error: "record not found", Code: "SIM_003"},
		},
	}}

	assert.Equal(t,
		"threshold 90 (similarity_90): 2 ids, neighbor lists truncated\n1a1p\t1\t1cn2\n9xyz\t-\tSIM_003: record not found",
		v.String())
}

//Personal.AI order the ending
