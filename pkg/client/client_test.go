package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	count int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Infof(format string, args ...interface{})  { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Errorf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }

// ---------------------------------------------------------------------------
// Constructor
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:3001/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "cyclome-go-sdk/")

	for _, bad := range []string{"", "ftp://host", "localhost:3001", "::"} {
		_, err := NewClient(bad)
		assert.ErrorIs(t, err, ErrInvalidBaseURL, bad)
	}
}

func TestClient_SubClientsAreShared(t *testing.T) {
	c, err := NewClient("http://localhost")
	require.NoError(t, err)
	assert.Same(t, c.Structures(), c.Structures())
	assert.Same(t, c.Similarity(), c.Similarity())
}

// ---------------------------------------------------------------------------
// Request handling
// ---------------------------------------------------------------------------

func TestClient_Health(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Contains(t, r.Header.Get("User-Agent"), "cyclome-go-sdk/")
		fmt.Fprint(w, `{"ok":true,"ts":1700000000000}`)
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.OK)
	assert.Equal(t, int64(1700000000000), h.TS)
}

func TestClient_APIError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-Request-ID", "srv-1")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"structure not found","code":"STR_002","detail":"9zzz"}`)
	})

	_, err := c.Structures().Base(context.Background(), "9zzz")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "STR_002", apiErr.Code)
	assert.Equal(t, "structure not found", apiErr.Message)
	assert.Equal(t, "9zzz", apiErr.Detail)
	assert.Equal(t, "srv-1", apiErr.RequestID)
	assert.Contains(t, apiErr.Error(), "HTTP 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx is not retried")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"results":["1A1P_A"]}`)
	})

	res, err := c.Structures().Search(context.Background(), "1a1p", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A1P_A"}, res)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RetryExhausted(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"internal server error","code":"COMMON_001"}`)
	}, WithRetryMax(2), WithLogger(logger))

	_, err := c.Structures().All(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Greater(t, atomic.LoadInt32(&logger.count), int32(0))
}

func TestClient_RateLimitedRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"rate limit exceeded, please retry later","code":"COMMON_007"}`)
			return
		}
		fmt.Fprint(w, `{"results":[]}`)
	})

	res, err := c.Structures().All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_RateLimitedWithoutRetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Structures().All(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
	assert.Equal(t, http.StatusText(http.StatusTooManyRequests), apiErr.Message)
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Structures().All(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":`)
	})

	_, err := c.Structures().All(context.Background())
	assert.ErrorContains(t, err, "failed to unmarshal response")
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}

	b := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b, 100*time.Millisecond)
	assert.Less(t, b, 125*time.Millisecond)

	b = c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b, 300*time.Millisecond)
	assert.Less(t, b, 375*time.Millisecond)
}

//Personal.AI order the ending
