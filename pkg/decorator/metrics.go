package decorator

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/queryspec/pkg/metrics"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/architeacher/queryspec/pkg/translator"
	"go.opentelemetry.io/otel/attribute"
)

type metricsDecorator[R any] struct {
	base   translator.Translator[R]
	name   string
	client metrics.Client
}

func (d metricsDecorator[R]) Name() string { return d.name }

func (d metricsDecorator[R]) Translate(ctx context.Context, root *spec.Node) (result R, err error) {
	start := time.Now()

	defer func() {
		if d.client == nil {
			return
		}

		attrs := []attribute.KeyValue{attribute.String("root", rootSource(root))}

		d.client.Observe(ctx, fmt.Sprintf("translations.%s.duration", d.name), time.Since(start).Seconds(), attrs...)

		if err == nil {
			d.client.Inc(ctx, fmt.Sprintf("translations.%s.success", d.name), 1, attrs...)
		} else {
			d.client.Inc(ctx, fmt.Sprintf("translations.%s.failure", d.name), 1, attrs...)
		}
	}()

	return d.base.Translate(ctx, root)
}
