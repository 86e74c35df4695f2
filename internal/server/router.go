package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatcalc/internal/calculator"
	"chatcalc/internal/handlers"
	"chatcalc/internal/observability"
)

// NewRouter wires the calculator endpoints behind the observability
// middleware stack.
func NewRouter(calc *calculator.Handlers) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calc.RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "not found")
	})

	return r
}
