package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAttempt(OutcomeSuccess)
	c.RecordAttempt(OutcomeSuccess)
	c.RecordAttempt(OutcomeFailed)
	c.RecordRefund(true)
	c.RecordRefund(false)
	c.RecordLedgerIncident()
	c.RecordIdentity("signup", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.attempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attempts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refunds.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refunds.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.incidents))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.identity.WithLabelValues("signup", "ok")))
}

func TestCollector_Latency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLatency(3 * time.Second)

	families, err := reg.Gather()
	assert.NoError(t, err)

	var count uint64
	for _, mf := range families {
		if mf.GetName() == "blogwriter_generation_latency_seconds" {
			count = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), count)
}

func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}
