// Package telemetry builds the trace and metric providers of the CLI. Both
// report to a local writer: spans through the stdout exporter, metrics as
// log lines when the client shuts down.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"github.com/architeacher/queryspec/internal/config"
	"github.com/architeacher/queryspec/pkg/logger"
	"github.com/architeacher/queryspec/pkg/metrics"
	"github.com/architeacher/queryspec/pkg/metrics/noop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	otelTrace "go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const meterScope = "github.com/architeacher/queryspec"

type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// NewTracerProvider returns a no-op provider unless traces are enabled.
func NewTracerProvider(cfg config.ServiceConfig, w io.Writer) (otelTrace.TracerProvider, ShutdownFunc, error) {
	if !cfg.Telemetry.Traces.Enabled {
		return tracenoop.NewTracerProvider(), noopShutdown, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create an StdOut trace exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, nil, err
	}

	sampler := sdktrace.TraceIDRatioBased(cfg.Telemetry.Traces.SamplerRatio)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Shutdown, nil
}

// NewMetricsClient returns a no-op client unless metrics are enabled. The
// enabled client logs every collected instrument on Shutdown.
func NewMetricsClient(cfg config.ServiceConfig, log logger.Logger) (metrics.Client, error) {
	if !cfg.Telemetry.Metrics.Enabled {
		return noop.NewMetricsClient(), nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	shutdown := func(ctx context.Context) error {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			return fmt.Errorf("failed to collect metrics: %w", err)
		}

		logMetrics(log, rm)

		return provider.Shutdown(ctx)
	}

	return metrics.NewOTELClient(provider, meterScope, metrics.WithShutdown(shutdown)), nil
}

func newResource(cfg config.ServiceConfig) (*resource.Resource, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("env", cfg.App.Env.Name),
			attribute.String("commit_sha", config.CommitSHA),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	return res, nil
}

func logMetrics(log logger.Logger, rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			event := log.Info().Str("metric", m.Name)

			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}

				event = event.Int64("value", total)
			case metricdata.Histogram[float64]:
				var (
					count uint64
					sum   float64
				)

				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}

				event = event.Uint64("count", count).Float64("sum", sum)
			}

			event.Msg("metric collected")
		}
	}
}
