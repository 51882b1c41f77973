// Package metrics provides a replica FailureSink that counts backend failures in Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zoobzio/replica"
)

// Sink counts failures per operation and backend role, then forwards them to
// an optional next sink.
type Sink struct {
	failures *prometheus.CounterVec
	next     replica.FailureSink
}

// NewSink registers the failure counter with reg and returns a Sink.
// A nil reg leaves the counter unregistered; a nil next stops forwarding.
func NewSink(reg prometheus.Registerer, next replica.FailureSink) *Sink {
	if next == nil {
		next = replica.NopSink{}
	}
	return &Sink{
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "replica",
			Subsystem: "backend",
			Name:      "failures_total",
			Help:      "Total number of backend mutation failures absorbed by the replicating adapter",
		}, []string{"op", "role"}),
		next: next,
	}
}

// ReportCritical increments the counter for failure and forwards it.
func (s *Sink) ReportCritical(ctx context.Context, failure replica.Failure) {
	s.failures.WithLabelValues(string(failure.Op), string(failure.Role)).Inc()
	s.next.ReportCritical(ctx, failure)
}

// Failures returns the underlying counter vector.
func (s *Sink) Failures() *prometheus.CounterVec {
	return s.failures
}

// Ensure Sink implements replica.FailureSink.
var _ replica.FailureSink = (*Sink)(nil)
