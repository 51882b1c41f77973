package replica

import "context"

// NopSink discards every report.
type NopSink struct{}

// ReportCritical does nothing.
func (NopSink) ReportCritical(context.Context, Failure) {}

// SinkFunc adapts a function to FailureSink.
type SinkFunc func(ctx context.Context, failure Failure)

// ReportCritical calls f.
func (f SinkFunc) ReportCritical(ctx context.Context, failure Failure) {
	f(ctx, failure)
}

// MultiSink forwards each report to every sink in order.
// Nil sinks are skipped.
func MultiSink(sinks ...FailureSink) FailureSink {
	kept := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return kept
}

type multiSink []FailureSink

func (m multiSink) ReportCritical(ctx context.Context, failure Failure) {
	for _, s := range m {
		s.ReportCritical(ctx, failure)
	}
}

// Ensure sinks implement FailureSink.
var (
	_ FailureSink = NopSink{}
	_ FailureSink = SinkFunc(nil)
	_ FailureSink = multiSink(nil)
)
