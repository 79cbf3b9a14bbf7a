// Package decorator wraps translators with logging, metrics and tracing.
package decorator

import (
	"github.com/architeacher/queryspec/pkg/logger"
	"github.com/architeacher/queryspec/pkg/metrics"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/architeacher/queryspec/pkg/translator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

// ApplyDecorators wraps t so that each translation is logged, counted and
// traced. The name reported by t labels all three.
func ApplyDecorators[R any](
	t translator.Translator[R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) translator.Translator[R] {
	name := translator.NameOf(t)

	return loggingDecorator[R]{
		base: metricsDecorator[R]{
			base: tracingDecorator[R]{
				base:           t,
				name:           name,
				tracerProvider: tracerProvider,
			},
			name:   name,
			client: metricsClient,
		},
		name:   name,
		logger: log,
	}
}

func rootSource(root *spec.Node) string {
	if root == nil {
		return ""
	}

	return root.Source()
}
