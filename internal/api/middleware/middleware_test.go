package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func TestAuth(t *testing.T) {
	var got int64
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not a number", "abc", http.StatusUnauthorized},
		{"negative", "-3", http.StatusUnauthorized},
		{"ok", "17", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderUserID, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, int64(17), got)
}

func TestSession(t *testing.T) {
	var (
		got string
		ok  bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetSessionID(r.Context())
	})

	t.Run("optional header absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Session(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, ok)
	})

	t.Run("normalized uuid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderSessionID, "5F0C5B4E-6A58-4C1B-9B2A-1D3C2F4E5A6B")
		rec := httptest.NewRecorder()
		Session(next).ServeHTTP(rec, req)
		assert.True(t, ok)
		assert.Equal(t, "5f0c5b4e-6a58-4c1b-9b2a-1d3c2f4e5a6b", got)
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderSessionID, "not-a-uuid")
		rec := httptest.NewRecorder()
		Session(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("required but absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireSession(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	l, err := NewRateLimiter(1, 2, nil, logger.Nop{})
	require.NoError(t, err)
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/holds", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, l.Prune(time.Minute))
}

func TestRateLimiter_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	l, err := NewRateLimiter(1, 1, nil, logger.Nop{})
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC) }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	passed := 0
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/holds", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			passed++
		}
	}

	assert.Equal(t, 1, passed)
	assert.Len(t, l.visitors, 1)
}

func TestRateLimiter_ClientIP(t *testing.T) {
	l, err := NewRateLimiter(1, 1, []string{"10.0.0.0/8", "192.168.1.1"}, logger.Nop{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    []string
		want   string
	}{
		{"no header", "203.0.113.7:1", nil, "203.0.113.7"},
		{"untrusted peer header ignored", "203.0.113.7:1", []string{"1.2.3.4"}, "203.0.113.7"},
		{"trusted peer", "10.1.2.3:1", []string{"198.51.100.1"}, "198.51.100.1"},
		{"spoofed left entries skipped", "10.1.2.3:1", []string{"6.6.6.6, 7.7.7.7, 198.51.100.1"}, "198.51.100.1"},
		{"trusted hops skipped", "10.1.2.3:1", []string{"198.51.100.1, 192.168.1.1", "10.9.9.9"}, "198.51.100.1"},
		{"garbage hop falls back to peer", "10.1.2.3:1", []string{"not-an-ip"}, "10.1.2.3"},
		{"only trusted hops", "10.1.2.3:1", []string{"10.4.4.4"}, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/holds", nil)
			req.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, l.clientIP(req))
		})
	}
}

func TestNewRateLimiter_InvalidProxy(t *testing.T) {
	_, err := NewRateLimiter(1, 1, []string{"10.0.0.0/33"}, logger.Nop{})
	assert.Error(t, err)
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeHTTPMetrics struct{ got []recordedRequest }

func (f *fakeHTTPMetrics) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method, route, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/appointments/{token}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/appointments/secret-token", nil))

	require.Len(t, m.got, 1)
	assert.Equal(t, recordedRequest{http.MethodGet, "/appointments/{token}", http.StatusNotFound}, m.got[0])
}
