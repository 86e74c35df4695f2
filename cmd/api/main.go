package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatcalc/internal/calculator"
	"chatcalc/internal/config"
	"chatcalc/internal/expr"
	"chatcalc/internal/observability"
	"chatcalc/internal/server"
	"chatcalc/internal/session"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	// Logger
	err := observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(ctx)

	// OTLP log export, teed with the stdout logger
	logShutdown, err := observability.InitLogging(ctx)
	if err != nil {
		panic(err)
	}
	defer logShutdown(ctx)

	// Configuration, then the core built from it
	cfg, err := config.Load()
	if err != nil {
		observability.Logger.Fatal("loading configuration", zap.Error(err))
	}

	evaluator, err := expr.New(cfg.EvaluatorOptions())
	if err != nil {
		observability.Logger.Fatal("building evaluator", zap.Error(err))
	}

	registry := session.NewRegistry(cfg.MaxExpressionLength)

	// Metrics
	metricShutdown, err := initMetrics(ctx, registry)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	// Router
	router := server.NewRouter(calculator.NewHandlers(registry, evaluator))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started", zap.String("addr", cfg.ListenAddr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}
