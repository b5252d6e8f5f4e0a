package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	disabled := Init(false)
	require.NotNil(t, disabled)
	_, isNoop := disabled.(*NoopMetrics)
	assert.True(t, isNoop)

	enabled := Init(true)
	require.NotNil(t, enabled)
	// Repeated Init must hand back the same registered instance.
	assert.Same(t, enabled, Init(true))
}

func TestMetricsRecord(t *testing.T) {
	m, ok := Init(true).(*Metrics)
	require.True(t, ok)

	before := testutil.ToFloat64(m.InitiationsTotal.WithLabelValues("success"))
	m.RecordInitiation("success")
	after := testutil.ToFloat64(m.InitiationsTotal.WithLabelValues("success"))
	assert.Equal(t, before+1, after)

	beforePolls := testutil.ToFloat64(m.PollsTotal.WithLabelValues("pending"))
	m.RecordPoll("pending")
	assert.Equal(t, beforePolls+1, testutil.ToFloat64(m.PollsTotal.WithLabelValues("pending")))

	beforeRevoked := testutil.ToFloat64(m.SessionsRevokedTotal)
	m.RecordSessionRevocations(3)
	assert.Equal(t, beforeRevoked+3, testutil.ToFloat64(m.SessionsRevokedTotal))
}

func TestNoopMetrics(t *testing.T) {
	n := NewNoopMetrics()
	// Must not panic.
	n.RecordInitiation("success")
	n.RecordVerification("expired")
	n.RecordPoll("pending")
	n.RecordSessionRevocations(2)
	n.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m, ok := Init(true).(*Metrics)
	require.True(t, ok)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	before := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200"))
	assert.Equal(t, before+1, after)
}
