package calculator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"chatcalc/internal/session"
)

// Metric instruments — initialized once via InitMetrics().
var (
	opsCounter    metric.Int64Counter
	evalHistogram metric.Float64Histogram
	errorCounter  metric.Int64Counter
	resultGauge   metric.Float64Gauge
)

// InitMetrics registers custom OTel metric instruments for the calculator
// domain and an observable gauge over the registry's live-session count.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics(registry *session.Registry) error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of symbolic edit and evaluate operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	evalHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of expression evaluations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected or failed operations, by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The most recently computed result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	if registry != nil {
		sessionsGauge, err := meter.Int64ObservableGauge("calculator.sessions.active",
			metric.WithDescription("Number of live calculator sessions"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			return fmt.Errorf("creating sessions gauge: %w", err)
		}
		_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(sessionsGauge, int64(registry.Len()))
			return nil
		}, sessionsGauge)
		if err != nil {
			return fmt.Errorf("registering sessions callback: %w", err)
		}
	}

	return nil
}
