// Package metrics exports dispatch counters and latencies to Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formintake/pkg/dispatch"
)

const namespace = "formintake"

// Observer records one sample per dispatched request.
type Observer struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

var _ dispatch.Observer = (*Observer)(nil)

// NewObserver registers the intake collectors on a fresh registry.
func NewObserver() (*Observer, error) {
	registry := prometheus.NewRegistry()
	o := &Observer{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Submissions handled, by service, status and error type.",
		}, []string{"service", "status", "error_type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a submission.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		gatherer: registry,
	}
	for _, c := range []prometheus.Collector{o.requests, o.duration} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return o, nil
}

// ObserveDispatch implements dispatch.Observer.
func (o *Observer) ObserveDispatch(serviceID string, status int, errorType string, elapsed time.Duration) {
	o.requests.WithLabelValues(serviceID, strconv.Itoa(status), errorType).Inc()
	o.duration.WithLabelValues(serviceID).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})
}
