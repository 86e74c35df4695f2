package main

import (
	"context"

	"chatcalc/internal/calculator"
	"chatcalc/internal/observability"
	"chatcalc/internal/session"
)

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context, registry *session.Registry) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(registry); err != nil {
		return nil, err
	}

	return shutdown, nil
}
