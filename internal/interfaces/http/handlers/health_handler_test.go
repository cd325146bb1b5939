package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthEngine(h *HealthHandler) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func TestHealthHandler_API(t *testing.T) {
	h := NewHealthHandler("v1.0.0")
	h.now = func() time.Time { return time.UnixMilli(1700000000123) }

	w := doRequest(newHealthEngine(h), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"ts":1700000000123}`, w.Body.String())
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("v1.0.0")
	h.startAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.startAt.Add(90*time.Second + 300*time.Millisecond) }

	w := doRequest(newHealthEngine(h), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive","version":"v1.0.0","uptime":"1m30s"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("no checkers", func(t *testing.T) {
		w := doRequest(newHealthEngine(NewHealthHandler("v")), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	})

	t.Run("all healthy", func(t *testing.T) {
		h := NewHealthHandler("v", ReadyChecker("catalog", func() bool { return true }))
		w := doRequest(newHealthEngine(h), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "healthy", resp.Components["catalog"].Status)
	})

	t.Run("catalog not ready", func(t *testing.T) {
		h := NewHealthHandler("v",
			ReadyChecker("catalog", func() bool { return false }),
			NewCheckerFunc("cache", func(context.Context) error { return nil }),
		)
		w := doRequest(newHealthEngine(h), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "unhealthy", resp.Components["catalog"].Status)
		assert.Contains(t, resp.Components["catalog"].Error, "catalog not ready")
		assert.Equal(t, "healthy", resp.Components["cache"].Status)
	})
}

func TestHealthHandler_Detailed(t *testing.T) {
	h := NewHealthHandler("v2",
		NewCheckerFunc("redis", func(context.Context) error { return stderrors.New("connection refused") }),
	)
	w := doRequest(newHealthEngine(h), http.MethodGet, "/healthz/detail", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status     string                    `json:"status"`
		Version    string                    `json:"version"`
		Components map[string]ComponentCheck `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "v2", resp.Version)
	assert.Equal(t, "connection refused", resp.Components["redis"].Error)
}

func TestReadyChecker_FollowsCatalog(t *testing.T) {
	svc := newTestService(t, nil)
	c := ReadyChecker("catalog", svc.Ready)
	assert.Equal(t, "catalog", c.Name())
	assert.NoError(t, c.Check(context.Background()))
}

//Personal.AI order the ending
