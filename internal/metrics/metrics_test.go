package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/straye-as/crm-reports/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/reports/{kind}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	for _, kind := range []string{"sales", "funnel"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+kind, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/reports/{kind}", "418")))
}

func TestRecorders(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	m.RecordReport("funnel", "ok", 10*time.Millisecond)
	m.RecordReport("funnel", "ok", 20*time.Millisecond)
	m.RecordSourceFailure("funnel", "sales")
	m.RecordExport("funnel")
	m.SetSLABucket("critical", 7)
	m.UpdateDBConnections(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("funnel", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFailures.WithLabelValues("funnel", "sales")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsCreated.WithLabelValues("funnel")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.SLAClientsByBucket.WithLabelValues("critical")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DBOpenConnections))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordReport("sales", "ok", time.Second)
		m.RecordSourceFailure("sales", "clients")
		m.RecordExport("sales")
		m.SetSLABucket("normal", 1)
		m.UpdateDBConnections(1)
	})
}
