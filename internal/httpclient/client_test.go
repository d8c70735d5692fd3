package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("with default config", func(t *testing.T) {
		client := NewWithDefaults()
		assert.NotNil(t, client)
		assert.NotNil(t, client.client)
		assert.NotNil(t, client.breaker)
		assert.NotNil(t, client.logger)
	})

	t.Run("with custom config", func(t *testing.T) {
		cfg := Config{
			Timeout:          10 * time.Second,
			RetryAttempts:    5,
			CircuitThreshold: 10,
		}
		client := New(cfg)
		assert.NotNil(t, client)
		assert.Equal(t, 5, client.config.RetryAttempts)
		assert.Equal(t, 10, client.config.CircuitThreshold)
	})

	t.Run("with custom base client", func(t *testing.T) {
		baseClient := &http.Client{Timeout: 5 * time.Second}
		cfg := DefaultConfig()
		cfg.BaseClient = baseClient
		client := New(cfg)
		assert.Equal(t, baseClient, client.client)
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`#EXTM3U`))
		}))
		defer server.Close()

		client := NewWithDefaults()
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("sets user agent header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get(HeaderUserAgent), "tvdeckd")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := DefaultConfig()
		cfg.UserAgent = "tvdeckd-test/1.0"
		client := New(cfg)

		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("preserves caller user agent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "VLC/3.0", r.Header.Get(HeaderUserAgent))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewWithDefaults()
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		req.Header.Set(HeaderUserAgent, "VLC/3.0")

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("sets accept encoding header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acceptEncoding := r.Header.Get(HeaderAcceptEncoding)
			assert.Contains(t, acceptEncoding, "gzip")
			assert.Contains(t, acceptEncoding, "br")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewWithDefaults()
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	})
}

func TestClient_Retries(t *testing.T) {
	t.Run("retries on 503 then succeeds", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count := atomic.AddInt32(&attempts, 1)
			if count < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := DefaultConfig()
		cfg.RetryAttempts = 3
		cfg.RetryDelay = 10 * time.Millisecond
		client := New(cfg)

		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("zero retry attempts means a single request", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cfg := DefaultConfig()
		cfg.RetryAttempts = 0
		client := New(cfg)

		_, err := client.Get(context.Background(), server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry non-retryable status", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		cfg := DefaultConfig()
		cfg.RetryAttempts = 3
		cfg.RetryDelay = time.Millisecond
		client := New(cfg)

		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("opens after threshold failures", func(t *testing.T) {
		cb := NewCircuitBreaker(3, time.Minute, 1)

		for i := 0; i < 3; i++ {
			assert.True(t, cb.Allow())
			cb.RecordFailure()
		}

		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("half-opens after timeout", func(t *testing.T) {
		cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())

		time.Sleep(20 * time.Millisecond)
		assert.True(t, cb.Allow())
		assert.Equal(t, CircuitHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.Equal(t, CircuitClosed, cb.State())
	})

	t.Run("failure in half-open reopens", func(t *testing.T) {
		cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
		cb.RecordFailure()
		time.Sleep(20 * time.Millisecond)
		require.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
	})

	t.Run("reset closes the circuit", func(t *testing.T) {
		cb := NewCircuitBreaker(1, time.Minute, 1)
		cb.RecordFailure()
		require.Equal(t, CircuitOpen, cb.State())

		cb.Reset()
		assert.Equal(t, CircuitClosed, cb.State())
		assert.Equal(t, 0, cb.Failures())
	})
}

func TestObfuscateURL(t *testing.T) {
	t.Run("masks sensitive query parameters", func(t *testing.T) {
		u, err := url.Parse("http://provider.example/live/stream.m3u8?token=secret123&user=bob")
		require.NoError(t, err)

		out := ObfuscateURL(u)
		assert.NotContains(t, out, "secret123")
		assert.Contains(t, out, "user=bob")
	})

	t.Run("nil url", func(t *testing.T) {
		assert.Equal(t, "", ObfuscateURL(nil))
	})

	t.Run("string form passes through unparseable input", func(t *testing.T) {
		assert.Equal(t, "://bad", ObfuscateURLString("://bad"))
	})
}
