// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeInsufficient Outcome = "insufficient_credit"
	OutcomeFailed       Outcome = "failed"
	OutcomeBusy         Outcome = "busy"
)

// Recorder is what services depend on. Collector and Nop implement it.
type Recorder interface {
	RecordAttempt(outcome Outcome)
	RecordRefund(ok bool)
	RecordLedgerIncident()
	RecordLatency(d time.Duration)
	RecordIdentity(op string, ok bool)
}

type Collector struct {
	attempts  *prometheus.CounterVec
	refunds   *prometheus.CounterVec
	incidents prometheus.Counter
	latency   prometheus.Histogram
	identity  *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogwriter_generation_attempts_total",
			Help: "Generation attempts by outcome",
		}, []string{"outcome"}),
		refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogwriter_generation_refunds_total",
			Help: "Compensating refunds by result",
		}, []string{"result"}),
		incidents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogwriter_ledger_incidents_total",
			Help: "Debits that could not be refunded",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogwriter_generation_latency_seconds",
			Help:    "Model call latency",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120},
		}),
		identity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogwriter_identity_operations_total",
			Help: "Identity bridge operations by op and result",
		}, []string{"op", "result"}),
	}

	reg.MustRegister(c.attempts, c.refunds, c.incidents, c.latency, c.identity)
	return c
}

func (c *Collector) RecordAttempt(outcome Outcome) {
	c.attempts.WithLabelValues(string(outcome)).Inc()
}

func (c *Collector) RecordRefund(ok bool) {
	c.refunds.WithLabelValues(result(ok)).Inc()
}

func (c *Collector) RecordLedgerIncident() {
	c.incidents.Inc()
}

func (c *Collector) RecordLatency(d time.Duration) {
	c.latency.Observe(d.Seconds())
}

func (c *Collector) RecordIdentity(op string, ok bool) {
	c.identity.WithLabelValues(op, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordAttempt(Outcome)       {}
func (Nop) RecordRefund(bool)           {}
func (Nop) RecordLedgerIncident()       {}
func (Nop) RecordLatency(time.Duration) {}
func (Nop) RecordIdentity(string, bool) {}
