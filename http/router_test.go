package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elena-agent/service"
)

func newTestRouter(limiter *RateLimiter) http.Handler {
	aff := newTestAffordability(nil)
	v := NewRequestValidator()
	return NewRouter(
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, RateLimiter: limiter},
		NewAffordabilityHandler(aff, v),
		NewTermOptionsHandler(service.NewTermOptionsService(aff), v),
	)
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Affordability(t *testing.T) {
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, postJSON("/api/elena/affordability", `{"overrides": {"income": 5000}}`))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/elena/affordability", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/elena/affordability", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimited(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()
	router := newTestRouter(limiter)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, postJSON("/api/elena/affordability", `{}`))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, postJSON("/api/elena/affordability", `{}`))
	health := httptest.NewRecorder()
	router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, health.Code)
}
