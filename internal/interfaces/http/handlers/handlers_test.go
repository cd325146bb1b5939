package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyclome/internal/application/catalog"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/internal/infrastructure/storage/localfs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRows(rows ...map[string]interface{}) catalog.RowLoader {
	return func() ([]map[string]interface{}, error) { return rows, nil }
}

func newTestService(t *testing.T, similarity catalog.RowLoader) catalog.Service {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"1A1P_A.pdb", "1A1P_B.pdb", "1CN2.pdb", "1AG7_A.pdb", "1AG7_B.pdb"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("HEADER "+name+"\n"), 0o644))
	}

	if similarity == nil {
		similarity = testRows(
			map[string]interface{}{"PDB": "1AHL.pdb;1AKG_A.pdb", "similarity_75": "1wt8_A;1ahl;1zzz"},
			map[string]interface{}{"PDB": "1WT8", "similarity_75": "1ahl;1akg"},
		)
	}
	return catalog.NewService(context.Background(), catalog.Config{SimilarityPath: "metadata/similarity.json"}, catalog.Dependencies{
		Source: localfs.NewSource(dir),
		Metadata: testRows(
			map[string]interface{}{"PDB": "1AG7_A.pdb;1AG7_B.pdb", "Sequence": "CYIQNCPLGG", "Name": "conotoxin"},
			map[string]interface{}{"PDB": "1CN2.pdb", "Sequence": "ICPRILMECKADSDCLAQCICEES"},
		),
		Similarity: similarity,
		Logger:     logging.NewNopLogger(),
	})
}

func newTestEngine(svc catalog.Service, checkers ...HealthChecker) *gin.Engine {
	log := logging.NewNopLogger()
	r := gin.New()
	NewHealthHandler("test", checkers...).RegisterRoutes(r)
	api := r.Group("/api")
	NewStructureHandler(svc, log).RegisterRoutes(api.Group("/pdb"))
	NewSimilarityHandler(svc, log).RegisterRoutes(api.Group("/similarity"))
	NewMetaHandler(svc, log).RegisterRoutes(api.Group("/meta"))
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// ─────────────────────────────────────────────────────────────────────────────
// /api/pdb
// ─────────────────────────────────────────────────────────────────────────────

func TestStructureHandler_Stats(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/pdb/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(3), stats["pdb_count"])
	assert.Equal(t, float64(5), stats["chain_count"])
	assert.Equal(t, float64(3), stats["sequence_count"])
	assert.NotEmpty(t, stats["source"])
}

func TestStructureHandler_Search(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	tests := []struct {
		path string
		want string
	}{
		{"/api/pdb/search?q=1A1P", `{"results":["1A1P_A","1A1P_B"]}`},
		{"/api/pdb/search?q=1a&limit=3", `{"results":["1A1P_A","1A1P_B","1AG7_A"]}`},
		{"/api/pdb/search?q=1ag7_b", `{"results":["1AG7_B"]}`},
		{"/api/pdb/search?q=1&limit=abc", `{"results":["1A1P_A","1A1P_B","1AG7_A","1AG7_B","1CN2"]}`},
		{"/api/pdb/search?q=%20%20", `{"results":[]}`},
		{"/api/pdb/search", `{"results":[]}`},
	}
	for _, tt := range tests {
		w := doRequest(r, http.MethodGet, tt.path, "")
		assert.Equal(t, http.StatusOK, w.Code, tt.path)
		assert.JSONEq(t, tt.want, w.Body.String(), tt.path)
	}
}

func TestStructureHandler_SequenceSearch(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/pdb/sequence-search?q=iqncp", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[{"id":"1AG7_A","sequence":"CYIQNCPLGG"},{"id":"1AG7_B","sequence":"CYIQNCPLGG"}]}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/pdb/sequence-search?q=cpl", "")
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())
}

func TestStructureHandler_AllAndSequenceIndex(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/pdb/all", "")
	assert.JSONEq(t, `{"results":["1A1P_A","1A1P_B","1AG7_A","1AG7_B","1CN2"]}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/pdb/seq-index", "")
	assert.JSONEq(t, `{"results":[{"id":"1ag7_a","sequence":"CYIQNCPLGG"},{"id":"1ag7_b","sequence":"CYIQNCPLGG"}]}`, w.Body.String())
}

func TestStructureHandler_Sequences(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodPost, "/api/pdb/sequences", `{"ids":["1AG7"," 1cn2 ","1a1p","bad id",5]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[{"id":"1ag7","sequence":"CYIQNCPLGG"},{"id":"1cn2","sequence":"ICPRILMECKADSDCLAQCICEES"}]}`, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/pdb/sequences", `{"ids":"1ag7"}`)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/pdb/sequences", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/pdb/sequences", `{"ids":[`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeError(t, w).Error)
}

func TestStructureHandler_File(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/pdb/file/1A1P_A", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StructureContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "HEADER 1A1P_A.pdb\n", w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/pdb/file/1cn2", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/pdb/file/1a1p.pdb", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", decodeError(t, w).Error)

	w = doRequest(r, http.MethodGet, "/api/pdb/file/9zzz_a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "chain not found", resp.Error)
	assert.Equal(t, "STR_003", resp.Code)
}

func TestStructureHandler_Chain(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/pdb/1a1p/B", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HEADER 1A1P_B.pdb\n", w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/pdb/1a1p/z", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/pdb/1a1p/a_b", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid pdb or chain", decodeError(t, w).Error)
}

func TestStructureHandler_Base(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/pdb/1A1P", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pdb":"1A1P","chains":["A","B"],"chainIds":["1A1P_A","1A1P_B"],"files":["1A1P_A.pdb","1A1P_B.pdb"]}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/pdb/1cn2", "")
	assert.JSONEq(t, `{"pdb":"1CN2","chains":[],"chainIds":["1CN2"],"files":["1CN2.pdb"]}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/pdb/9zzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "structure not found", decodeError(t, w).Error)

	w = doRequest(r, http.MethodGet, "/api/pdb/1a1p_a", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid pdb id", decodeError(t, w).Error)
}

// ─────────────────────────────────────────────────────────────────────────────
// /api/meta
// ─────────────────────────────────────────────────────────────────────────────

func TestMetaHandler_Get(t *testing.T) {
	r := newTestEngine(newTestService(t, nil))

	w := doRequest(r, http.MethodGet, "/api/meta/1ag7_b", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"PDB":"1AG7_A.pdb;1AG7_B.pdb","Sequence":"CYIQNCPLGG","Name":"conotoxin"}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/meta/1ag7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "metadata not found", decodeError(t, w).Error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error mapping
// ─────────────────────────────────────────────────────────────────────────────

type mockService struct {
	catalog.Service
	mock.Mock
}

func (m *mockService) Search(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestWriteAppError_MasksForeignErrors(t *testing.T) {
	svc := &mockService{}
	svc.On("Search", mock.Anything, "1a", 0).Return(nil, stderrors.New("disk on fire"))
	r := newTestEngine(svc)

	w := doRequest(r, http.MethodGet, "/api/pdb/search?q=1a", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, "COMMON_001", resp.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
	svc.AssertExpectations(t)
}

//Personal.AI order the ending
