// Package zapsink provides a replica FailureSink that writes structured zap entries.
package zapsink

import (
	"context"

	"github.com/zoobzio/replica"
	"go.uber.org/zap"
)

// Sink implements replica.FailureSink on top of a zap.Logger.
type Sink struct {
	logger *zap.Logger
}

// New creates a Sink writing to logger. A nil logger discards every entry.
func New(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger}
}

// ReportCritical logs failure at error level tagged with severity=critical.
func (s *Sink) ReportCritical(_ context.Context, failure replica.Failure) {
	s.logger.Error(failure.Message(),
		zap.String("severity", "critical"),
		zap.String("op", string(failure.Op)),
		zap.String("role", string(failure.Role)),
		zap.String("key", failure.Key),
		zap.Error(failure.Err),
	)
}

// Ensure Sink implements replica.FailureSink.
var _ replica.FailureSink = (*Sink)(nil)
