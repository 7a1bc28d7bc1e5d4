package trigger

import (
	"context"

	"github.com/taskweave/taskweave/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics provides instrumentation for the cron trigger loop.
type Metrics struct {
	meter           metric.Meter
	dispatchedTotal metric.Int64Counter
	skippedTotal    metric.Int64Counter
	failedTotal     metric.Int64Counter
	tickDuration    metric.Float64Histogram
}

// NewMetrics initializes trigger metrics using the provided meter. A nil
// meter yields a no-op instance.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	if meter == nil {
		return m, nil
	}
	var err error
	if m.dispatchedTotal, err = meter.Int64Counter(
		"taskweave_trigger_dispatched_total",
		metric.WithDescription("Total workflow runs dispatched by the cron trigger"),
	); err != nil {
		return nil, err
	}
	if m.skippedTotal, err = meter.Int64Counter(
		"taskweave_trigger_skipped_total",
		metric.WithDescription("Total due workflows skipped, by reason"),
	); err != nil {
		return nil, err
	}
	if m.failedTotal, err = meter.Int64Counter(
		"taskweave_trigger_failed_total",
		metric.WithDescription("Total trigger dispatch failures"),
	); err != nil {
		return nil, err
	}
	if m.tickDuration, err = meter.Float64Histogram(
		"taskweave_trigger_tick_seconds",
		metric.WithDescription("Duration of trigger tick evaluation"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordDispatched(ctx context.Context) {
	if m == nil || m.dispatchedTotal == nil {
		return
	}
	m.dispatchedTotal.Add(ctx, 1)
}

func (m *Metrics) recordSkipped(ctx context.Context, reason string) {
	if m == nil || m.skippedTotal == nil {
		return
	}
	m.skippedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) recordFailed(ctx context.Context) {
	if m == nil || m.failedTotal == nil {
		return
	}
	m.failedTotal.Add(ctx, 1)
}

func (m *Metrics) recordTick(ctx context.Context, seconds float64) {
	if m == nil || m.tickDuration == nil {
		return
	}
	m.tickDuration.Record(ctx, seconds)
}

// mustMetrics builds metrics and logs instead of failing when the meter
// rejects an instrument.
func mustMetrics(ctx context.Context, meter metric.Meter) *Metrics {
	m, err := NewMetrics(meter)
	if err != nil {
		logger.FromContext(ctx).Warn("trigger metrics disabled", "error", err)
		return &Metrics{}
	}
	return m
}
