package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetricsAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(token string) *gin.Engine {
		r := gin.New()
		r.GET("/metrics", MetricsAuth(token), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return r
	}

	tests := []struct {
		name       string
		token      string
		authHeader string
		wantStatus int
	}{
		{name: "no token configured", token: "", authHeader: "", wantStatus: http.StatusOK},
		{name: "valid token", token: "secret", authHeader: "Bearer secret", wantStatus: http.StatusOK},
		{name: "missing header", token: "secret", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", token: "secret", authHeader: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", token: "secret", authHeader: "Basic secret", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(tt.token)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/metrics", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
