package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEvaluation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordEvaluation("bitcoin", "callMethod", "ok", 10*time.Millisecond)
	m.RecordEvaluation("bitcoin", "callMethod", "ok", 20*time.Millisecond)
	m.RecordEvaluation("bitcoin", "callMethod", "sandbox_error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("bitcoin", "callMethod", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("bitcoin", "callMethod", "sandbox_error")))
}

func TestRecordBootstrapAndLiveContexts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordBootstrap("ethereum", "ok", time.Second)
	m.RecordBootstrap("tezos", "error", time.Second)
	m.SetContextsLive(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BootstrapsTotal.WithLabelValues("ethereum", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BootstrapsTotal.WithLabelValues("tezos", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContextsLive))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
		m.RecordEvaluation("bitcoin", "callMethod", "ok", time.Millisecond)
		m.RecordBootstrap("bitcoin", "ok", time.Millisecond)
		m.SetContextsLive(3)
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/health", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
