package core

import (
	"context"
	"log"
	"time"
)

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens a span around a service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span, recording the operation outcome.
type TraceSpan interface {
	End(err error)
}

// AnomalyLog receives data-inconsistency notices (missing varieties, absent
// stages, per-member fan-out failures). These are logged, never thrown;
// reminder availability outweighs strict validation.
type AnomalyLog interface {
	Anomaly(ctx context.Context, subject string, format string, args ...any)
}

type stderrAnomalyLog struct{}

func (stderrAnomalyLog) Anomaly(_ context.Context, subject string, format string, args ...any) {
	log.Printf("anomaly [%s]: "+format, append([]any{subject}, args...)...)
}

// instrument wraps a service operation in a trace span and a metrics
// observation.
func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	started := s.nowFn()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	err := fn(ctx)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, s.nowFn().Sub(started))
	}
	return err
}
