package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_MemoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 3,
		StoreType:         RateLimitStoreMemory,
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/limited", limiter, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	doRequest := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest())
	}
	over := doRequest()
	assert.Equal(t, http.StatusTooManyRequests, over)
}

func TestNewRateLimiter_UnknownStoreFallsBackToMemory(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 10,
		StoreType:         RateLimitStoreType("bogus"),
	})
	require.NoError(t, err)
	require.NotNil(t, limiter)
}
