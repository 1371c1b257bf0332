package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/slaworks/sla-service/internal/compliance"
)

func TestMetrics_RecordCompliance(t *testing.T) {
	m := NewMetrics()
	m.RecordCompliance("ticket", compliance.WindowResolution, compliance.Metrics{
		Total: 4, OnTime: 2, AtRisk: 1, Overdue: 1, Untracked: 3, OnTimePercentage: 50,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.slaItems.WithLabelValues("ticket", "resolution", "on_time")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.slaItems.WithLabelValues("ticket", "resolution", "overdue")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.slaItems.WithLabelValues("ticket", "resolution", "untracked")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.slaRates.WithLabelValues("ticket", "resolution", "on_time")))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.RecordBreach("task")
	m.RecordBreach("task")
	m.RecordRequest("/api/v1/sla/matrix", "GET", 200, 10*time.Millisecond)
	m.RecordError("/api/v1/tickets/:id/sla", "GET", "NOT_FOUND")
	m.ObserveSweep(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.breaches.WithLabelValues("task")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/api/v1/sla/matrix", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("GET", "/api/v1/tickets/:id/sla", "NOT_FOUND")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sweepDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordBreach("ticket")
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordCompliance("ticket", compliance.WindowResponse, compliance.Metrics{})
	m.ObserveSweep(time.Millisecond)
}
