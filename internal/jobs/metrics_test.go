package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("sessions:purge").End(nil))
	boom := errors.New("boom")
	assert.Same(t, boom, m.Track("sessions:purge").End(boom))
	m.AddItems("sessions:purge", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sessions:purge", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sessions:purge", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("sessions:purge")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.items.WithLabelValues("sessions:purge")))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	assert.Same(t, boom, m.Track("x").End(boom))
	m.AddItems("x", 1)
}
