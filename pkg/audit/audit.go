// Package audit persists evaluation records. Sinks are best-effort: a sink
// failure is logged and never alters a decision that has already been made.
package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wardenlabs/warden/pkg/engine"
)

// Sink writes one audit trail to a backing store. Implementations must be
// safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, trail *engine.AuditTrail) error
	Close() error
}

// MultiSink fans one trail out to every configured sink. A failing sink does
// not stop delivery to the others.
type MultiSink struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewMulti wraps the given sinks. Nil entries are ignored.
func NewMulti(logger *zap.Logger, sinks ...Sink) *MultiSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &MultiSink{logger: logger}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Write delivers the trail to every sink and returns the joined errors.
func (m *MultiSink) Write(ctx context.Context, trail *engine.AuditTrail) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, trail); err != nil {
			m.logger.Warn("audit sink write failed",
				zap.String("audit_id", trail.AuditID), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and returns the joined errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink discards everything. Used when no sink is configured.
type NopSink struct{}

func (NopSink) Write(context.Context, *engine.AuditTrail) error { return nil }
func (NopSink) Close() error                                    { return nil }
