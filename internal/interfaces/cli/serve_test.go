package cli

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/internal/testutil"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewApp_Wiring(t *testing.T) {
	cfg := writeCatalog(t)
	app, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.Service.Ready())
	assert.Nil(t, app.grpc, "grpc disabled by default")

	w := get(t, app.Router, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, app.Router, "/api/pdb/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(3), stats["pdb_count"])
	assert.Equal(t, float64(4), stats["chain_count"])
	assert.Equal(t, float64(1), stats["sequence_count"])

	w = get(t, app.Router, "/api/meta/1AG7_A")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "conotoxin")

	w = get(t, app.Router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cyclome_")
}

func TestNewApp_CatalogConfig(t *testing.T) {
	cfg := writeCatalog(t)
	cfg.Search.MaxLimit = 1
	cfg.Similarity.MaxBatchSize = 7

	cc := CatalogConfig(cfg)
	assert.Equal(t, 1, cc.SearchMaxLimit)
	assert.Equal(t, 7, cc.MaxBatchIDs)
	assert.Equal(t, cfg.Similarity.DatasetPath, cc.SimilarityPath)
	assert.Equal(t, cfg.Redis.DefaultTTL, cc.CacheTTL)

	app, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	w := get(t, app.Router, "/api/pdb/search?q=1a&limit=50")
	assert.JSONEq(t, `{"results":["1A1P_A"]}`, w.Body.String())
}

func TestNewApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeCatalog(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	app, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	w := get(t, app.Router, "/api/similarity/1a1p/75")
	require.Equal(t, http.StatusOK, w.Code)

	var cached []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, cfg.Redis.KeyPrefix) {
			cached = append(cached, k)
		}
	}
	assert.NotEmpty(t, cached)

	w = get(t, app.Router, "/healthz/detail")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	cfg := writeCatalog(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 100 * time.Millisecond

	log := testutil.NewMockLogger()
	app, err := NewApp(context.Background(), cfg, log)
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, log.HasMessage("warn", "redis unavailable, similarity responses will not be cached"))
	w := get(t, app.Router, "/api/similarity/1a1p/75")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewApp_RateLimit(t *testing.T) {
	cfg := writeCatalog(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.Burst = 1

	app, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, http.StatusOK, get(t, app.Router, "/api/pdb/all").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, app.Router, "/api/pdb/all").Code)
	assert.Equal(t, http.StatusOK, get(t, app.Router, "/metrics").Code)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestApp_RunUntilCancelled(t *testing.T) {
	cfg := writeCatalog(t)
	cfg.Server.GRPCPort = freePort(t)
	cfg.Server.ShutdownTimeout = 2 * time.Second

	app, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.grpc)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.run(ctx, func() error { return app.http.Serve(ln) })
	}()

	url := "http://" + ln.Addr().String() + "/healthz"
	assert.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestApp_RunCancelledBeforeServing(t *testing.T) {
	cfg := writeCatalog(t)
	cfg.Server.GRPCPort = freePort(t)

	app, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.shutdown())

	assert.NoError(t, app.run(ctx, func() error { return app.http.Serve(ln) }))
}

func TestNewServiceLogger(t *testing.T) {
	cfg := writeCatalog(t)
	cfg.Log.Format = "console"
	cfg.Log.Output = "stderr"

	log, err := NewServiceLogger(cfg, "debug")
	require.NoError(t, err)
	_, ok := log.(logging.LevelSetter)
	assert.True(t, ok)
}

//Personal.AI order the ending
