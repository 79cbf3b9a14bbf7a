package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	// OTELClient records through instruments of one meter, created on first
	// use of each key.
	OTELClient struct {
		meter       metric.Meter
		descriptors map[string]Descriptor
		shutdown    func(context.Context) error

		mu         sync.Mutex
		counters   map[string]metric.Int64Counter
		histograms map[string]metric.Float64Histogram
	}

	Option func(*OTELClient)
)

// WithDescriptors sets the description and unit of known keys.
func WithDescriptors(descriptors map[string]Descriptor) Option {
	return func(c *OTELClient) {
		for k, d := range descriptors {
			c.descriptors[k] = d
		}
	}
}

// WithShutdown sets the function flushing the underlying provider.
func WithShutdown(fn func(context.Context) error) Option {
	return func(c *OTELClient) { c.shutdown = fn }
}

func NewOTELClient(provider metric.MeterProvider, scope string, opts ...Option) *OTELClient {
	c := &OTELClient{
		meter:       provider.Meter(scope),
		descriptors: make(map[string]Descriptor),
		counters:    make(map[string]metric.Int64Counter),
		histograms:  make(map[string]metric.Float64Histogram),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *OTELClient) Inc(ctx context.Context, key string, value int64, attributes ...attribute.KeyValue) {
	c.mu.Lock()
	counter, ok := c.counters[key]
	if !ok {
		var err error
		if counter, err = RegisterInt64Counter(c.meter, c.descriptors[key], key); err != nil {
			c.mu.Unlock()
			otel.Handle(err)

			return
		}

		c.counters[key] = counter
	}
	c.mu.Unlock()

	counter.Add(ctx, value, metric.WithAttributes(attributes...))
}

func (c *OTELClient) Observe(ctx context.Context, key string, value float64, attributes ...attribute.KeyValue) {
	c.mu.Lock()
	histogram, ok := c.histograms[key]
	if !ok {
		var err error
		if histogram, err = RegisterFloat64Histogram(c.meter, c.descriptors[key], key); err != nil {
			c.mu.Unlock()
			otel.Handle(err)

			return
		}

		c.histograms[key] = histogram
	}
	c.mu.Unlock()

	histogram.Record(ctx, value, metric.WithAttributes(attributes...))
}

func (c *OTELClient) Shutdown(ctx context.Context) error {
	if c.shutdown == nil {
		return nil
	}

	return c.shutdown(ctx)
}
