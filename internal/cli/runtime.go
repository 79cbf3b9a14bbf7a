package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/architeacher/queryspec/internal/config"
	"github.com/architeacher/queryspec/internal/querydoc"
	"github.com/architeacher/queryspec/internal/telemetry"
	"github.com/architeacher/queryspec/pkg/decorator"
	"github.com/architeacher/queryspec/pkg/logger"
	"github.com/architeacher/queryspec/pkg/metrics"
	"github.com/architeacher/queryspec/pkg/schemafile"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/architeacher/queryspec/pkg/translator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

// runtime holds the ambient services of one command run.
type runtime struct {
	log            logger.Logger
	tracerProvider otelTrace.TracerProvider
	metricsClient  metrics.Client
	shutdownTraces telemetry.ShutdownFunc
}

func newRuntime(cfg *config.ServiceConfig, errW io.Writer) (*runtime, error) {
	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, errW)

	tp, shutdown, err := telemetry.NewTracerProvider(*cfg, errW)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}

	client, err := telemetry.NewMetricsClient(*cfg, log)
	if err != nil {
		_ = shutdown(context.Background())

		return nil, WrapExitError(ExitCommandError, "failed to set up metrics", err)
	}

	return &runtime{
		log:            log,
		tracerProvider: tp,
		metricsClient:  client,
		shutdownTraces: shutdown,
	}, nil
}

func (r *runtime) close(ctx context.Context) {
	if err := r.metricsClient.Shutdown(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to shut down metrics")
	}

	if err := r.shutdownTraces(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to shut down tracing")
	}
}

// graph loads both inputs and builds the specification graph.
func (r *runtime) graph(schemaPath, queryPath string) (*spec.Node, error) {
	registry, err := schemafile.Load(schemaPath)
	if err != nil {
		return nil, inputError("failed to load schema file", err)
	}

	doc, err := querydoc.Load(queryPath)
	if err != nil {
		return nil, inputError("failed to load query document", err)
	}

	root, err := doc.Apply(registry, spec.NewBuilder())
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid query", err)
	}

	r.log.Debug().
		Str("schema", schemaPath).
		Str("query", queryPath).
		Int("schemas", len(registry.Schemas())).
		Msg("specification graph built")

	return root, nil
}

func decorate[R any](r *runtime, t translator.Translator[R]) translator.Translator[R] {
	return decorator.ApplyDecorators(t, r.log, r.metricsClient, r.tracerProvider)
}

func inputError(message string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, schemafile.ErrUnsupportedFormat) {
		return WrapExitError(ExitCommandError, message, err)
	}

	return WrapExitError(ExitFailure, message, err)
}
