package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/crm-reports/internal/config"
	"github.com/straye-as/crm-reports/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestLogging_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := middleware.Logging(zap.New(core))(ok)

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/sales", nil))
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
	})

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status_code"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := middleware.Recovery(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/funnel", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
	assert.Equal(t, 1, logs.Len())
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            600,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
	}
	rec := httptest.NewRecorder()
	middleware.SecurityHeaders(cfg)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=600; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Referrer-Policy"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		environment string
		origin      string
		wantAllowed bool
	}{
		{name: "explicit origin allowed", origins: []string{"https://crm.example.pe"}, environment: "production", origin: "https://crm.example.pe", wantAllowed: true},
		{name: "explicit origin rejected", origins: []string{"https://crm.example.pe"}, environment: "production", origin: "https://evil.example", wantAllowed: false},
		{name: "development allows any", environment: "development", origin: "http://localhost:5173", wantAllowed: true},
		{name: "production without origins denies", environment: "production", origin: "http://localhost:5173", wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.CORSConfig{AllowedOrigins: tt.origins, AllowedMethods: []string{"GET"}}
			h := middleware.CORS(cfg, tt.environment, zap.NewNop())(ok)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tt.wantAllowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 2,
		WhitelistIPs:          []string{"10.0.0.9"},
		WhitelistPaths:        []string{"/health/*"},
	}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	h := rl.LimitByIP(ok)

	do := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":4321"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/v1/reports", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("/api/v1/reports", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/reports", "10.0.0.1"))

	assert.Equal(t, http.StatusOK, do("/api/v1/reports", "10.0.0.2"), "limits are per client")
	assert.Equal(t, http.StatusOK, do("/health/db", "10.0.0.1"), "whitelisted path")
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do("/api/v1/reports", "10.0.0.9"), "whitelisted ip")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{RequestsPerMinute: 1, RequestsPerMinuteAuth: 1}, zap.NewNop())
	h := rl.LimitByUser(ok)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
