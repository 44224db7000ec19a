package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvInt(t *testing.T) {
	t.Setenv("RATE_TEST_KEY", "")
	assert.Equal(t, 5, envInt("RATE_TEST_KEY", 5), "unset falls back")

	t.Setenv("RATE_TEST_KEY", "12")
	assert.Equal(t, 12, envInt("RATE_TEST_KEY", 5))

	t.Setenv("RATE_TEST_KEY", "not-a-number")
	assert.Equal(t, 5, envInt("RATE_TEST_KEY", 5), "garbage falls back")

	t.Setenv("RATE_TEST_KEY", "-3")
	assert.Equal(t, 5, envInt("RATE_TEST_KEY", 5), "non-positive falls back")
}

func TestRateLimitMiddleware_BlocksAfterBurst(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	limited := 0
	for i := 0; i < requestBurst+10; i++ {
		req := httptest.NewRequest("GET", "/api/v1/challenges", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.10")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if i == 0 {
			assert.Equal(t, http.StatusOK, rr.Code, "first request passes")
		}
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Greater(t, limited, 0, "requests beyond the burst get 429")
}

func TestRateLimitMiddleware_PerClientBuckets(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust one client's bucket.
	for i := 0; i < requestBurst+10; i++ {
		req := httptest.NewRequest("GET", "/api/v1/challenges", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.20")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// A different client is unaffected.
	req := httptest.NewRequest("GET", "/api/v1/challenges", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.21")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
