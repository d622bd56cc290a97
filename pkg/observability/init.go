// Package observability provides tracing setup and shutdown for Prefab.
// Prometheus metrics live in pkg/metrics and structured logging in
// pkg/logger; this package owns the OpenTelemetry bootstrap.
package observability

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/prefab-dev/prefab/pkg/logger"
)

var (
	tracer   trace.Tracer
	initOnce sync.Once
)

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	SamplingRate   float64
	ExporterType   string // "stdout" for now
	BatchTimeout   time.Duration
	MaxExportBatch int
	MaxQueueSize   int
}

// DefaultConfig returns a default tracing configuration.
func DefaultConfig() TracingConfig {
	return TracingConfig{
		ServiceName:    "prefab",
		ServiceVersion: "1.0.0",
		Environment:    getEnv("ENVIRONMENT", "development"),
		SamplingRate:   0.1,
		ExporterType:   getEnv("TRACING_EXPORTER", "stdout"),
		BatchTimeout:   5 * time.Second,
		MaxExportBatch: 512,
		MaxQueueSize:   2048,
	}
}

// Initialize sets up the tracing provider and global propagators.
func Initialize(config TracingConfig) error {
	var err error

	initOnce.Do(func() {
		err = initTracing(config)
		if err != nil {
			return
		}

		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})

	return err
}

func initTracing(config TracingConfig) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	// stdout is the only exporter wired today; keep the switch so an OTLP
	// exporter can slot in without touching callers.
	var exporter sdktrace.SpanExporter
	switch config.ExporterType {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(config.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(config.MaxExportBatch),
			sdktrace.WithMaxQueueSize(config.MaxQueueSize),
		),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(config.ServiceName)

	return nil
}

// GetTracer returns the global tracer.
func GetTracer() trace.Tracer {
	return tracer
}

// Shutdown flushes the tracer provider and syncs the logger.
func Shutdown(ctx context.Context) error {
	var errs []error

	if tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer: %w", err))
		}
	}

	if err := logger.Sync(); err != nil {
		// Sync on stdout/stderr fails on some platforms; those errors are
		// harmless. See: https://github.com/uber-go/zap/issues/328
		errStr := err.Error()
		if !strings.Contains(errStr, "bad file descriptor") &&
			!strings.Contains(errStr, "invalid argument") &&
			!strings.Contains(errStr, "/dev/stdout") &&
			!strings.Contains(errStr, "/dev/stderr") {
			errs = append(errs, fmt.Errorf("failed to sync logger: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
