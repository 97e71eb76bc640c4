package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()
	if cfg.Router == nil {
		cfg.Router = NewRouter(RouterConfig{})
	}
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv
}

func TestNewServer_RequiresRouter(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestServer_Addr(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})
	assert.Equal(t, ":8000", srv.Addr())

	srv = newTestServer(t, ServerConfig{Addr: ":9090"})
	assert.Equal(t, ":9090", srv.Addr())

	var nilServer *Server
	assert.Equal(t, "", nilServer.Addr())
}

func TestServer_Banner(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"name": "AIDA - AI-Driven DAO Analyst",
		"version": "1.0.0",
		"status": "operational"
	}`, w.Body.String())
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "AIDA", body["service"])
	ts, ok := body["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestServer_SecurityHeaders(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), microphone=()", w.Header().Get("Permissions-Policy"))
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t, ServerConfig{})

	t.Run("Allowed Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/dao/0xdao/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Disallowed Origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("No Origin Passes Through", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestServer_RateLimit(t *testing.T) {
	// one request per minute leaves only the minimum burst of five
	srv := newTestServer(t, ServerConfig{RateLimitPerMin: 1})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error": "rate limit exceeded"}`, w.Body.String())
}

func TestServer_RateLimitDisabled(t *testing.T) {
	srv := newTestServer(t, ServerConfig{RateLimitPerMin: -1})
	require.Nil(t, srv.limiter)

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestNewIPRateLimiter(t *testing.T) {
	assert.Nil(t, newIPRateLimiter(0))
	assert.Nil(t, newIPRateLimiter(-5))

	l := newIPRateLimiter(600)
	require.NotNil(t, l)
	assert.Equal(t, 300, l.burst)
	assert.InDelta(t, 10.0, float64(l.rps), 1e-9)
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := newIPRateLimiter(60)
	require.True(t, l.allow("192.0.2.10"))
	require.True(t, l.allow("192.0.2.20"))

	l.mu.Lock()
	l.entries["192.0.2.10"].lastSeen = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.sweep(limiterIdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.entries, "192.0.2.10")
	assert.Contains(t, l.entries, "192.0.2.20")
}
