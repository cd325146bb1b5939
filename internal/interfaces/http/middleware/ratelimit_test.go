package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLimiter_Burst(t *testing.T) {
	l := NewClientLimiter(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, _ = l.Allow("a")
	assert.True(t, ok)

	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)
	assert.True(t, info.ResetAt.After(now))

	ok, _ = l.Allow("b")
	assert.True(t, ok, "clients have separate buckets")

	now = now.Add(time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok, "one token refilled after a second")
}

func TestClientLimiter_SweepsIdleClients(t *testing.T) {
	l := NewClientLimiter(10, 10, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.ClientCount())

	now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.ClientCount())
}

func TestNewClientLimiter_DefaultBurst(t *testing.T) {
	l := NewClientLimiter(2.5, 0, 0)
	assert.Equal(t, 3, l.burst)
}

func TestRateLimit_Middleware(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	cfg.KeyFunc = func(c *gin.Context) string { return c.GetHeader("X-Client") }
	limiter := NewClientLimiter(0.001, 1, time.Minute)

	r := gin.New()
	r.Use(RateLimit(limiter, cfg, nil))
	r.GET("/api/pdb/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func(path, client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/api/pdb/search", "one")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do("/api/pdb/search", "one")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "COMMON_007", body["code"])
	assert.Equal(t, "rate limit exceeded, please retry later", body["error"])

	assert.Equal(t, http.StatusOK, do("/api/pdb/search", "two").Code)
	assert.Equal(t, http.StatusOK, do("/api/health", "one").Code)
}

//Personal.AI order the ending
