package publisher

import (
	"log/slog"
	"time"
)

// DefaultTimeout bounds each publish request made by the default transport.
const DefaultTimeout = 30 * time.Second

type options struct {
	transport   Transport
	logger      *slog.Logger
	metrics     *Metrics
	concurrency int
}

// Option configures a Client or Publisher.
type Option func(*options)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger sets the logger; nil uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records publish metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithConcurrency caps how many endpoints a Publisher sends to at once.
// Zero or less means no limit.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = NewHTTPTransport(DefaultTimeout)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
