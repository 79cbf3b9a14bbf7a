package decorator

import (
	"context"

	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/architeacher/queryspec/pkg/translator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/architeacher/queryspec/pkg/decorator"

type tracingDecorator[R any] struct {
	base           translator.Translator[R]
	name           string
	tracerProvider otelTrace.TracerProvider
}

func (d tracingDecorator[R]) Name() string { return d.name }

func (d tracingDecorator[R]) Translate(ctx context.Context, root *spec.Node) (R, error) {
	if d.tracerProvider == nil {
		return d.base.Translate(ctx, root)
	}

	attrs := []attribute.KeyValue{
		attribute.String("translator", d.name),
		attribute.String("spec.root", rootSource(root)),
	}
	if root != nil {
		attrs = append(attrs, attribute.Int("spec.joins", len(root.Joins())))
	}

	ctx, span := d.tracerProvider.Tracer(tracerName).Start(ctx, "translate."+d.name, otelTrace.WithAttributes(attrs...))
	defer span.End()

	result, err := d.base.Translate(ctx, root)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return result, err
	}

	span.SetStatus(codes.Ok, "")

	return result, nil
}
