package publisher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publish outcomes recorded by Metrics.
const (
	outcomeSuccess        = "success"
	outcomeHTTPError      = "http_error"
	outcomeTransportError = "transport_error"
)

// Metrics records publish counts and latency per endpoint. A nil *Metrics
// records nothing.
type Metrics struct {
	requests *prometheus.CounterVec // endpoint, outcome
	duration *prometheus.HistogramVec
}

// NewMetrics creates publish metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grip",
			Subsystem: "publisher",
			Name:      "requests_total",
			Help:      "Publish requests sent to GRIP proxies",
		}, []string{"endpoint", "outcome"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grip",
			Subsystem: "publisher",
			Name:      "request_duration_seconds",
			Help:      "Publish request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
