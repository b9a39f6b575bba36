// Package metrics holds the Prometheus collectors shared by both services.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "servicemesh"

// NewRegistry returns a new prometheus.Registry with the Go and process
// collectors already registered.
func NewRegistry() (*prometheus.Registry, error) {
	r := prometheus.NewRegistry()
	if err := r.Register(collectors.NewGoCollector()); err != nil {
		return nil, errors.Trace(err)
	}
	if err := r.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, errors.Trace(err)
	}
	return r, nil
}

// Handler serves the registry in the exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// HTTP counts and times served requests per route template.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer, service string) (*HTTP, error) {
	labels := prometheus.Labels{"service": service}
	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests served, by method, route and status code.",
			ConstLabels: labels,
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency, by method and route.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return m, nil
}

func (m *HTTP) Observe(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RegisterDBStats exports the connection pool statistics of db under the
// given pool name.
func RegisterDBStats(reg prometheus.Registerer, pool string, db *sql.DB) error {
	return errors.Trace(reg.Register(collectors.NewDBStatsCollector(db, pool)))
}

// NewPoolUp registers the gauge the pool keepalive job reports into: 1 when
// the last ping of a pool succeeded, 0 otherwise.
func NewPoolUp(reg prometheus.Registerer) (*prometheus.GaugeVec, error) {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "up",
		Help:      "Whether the last keepalive ping of a connection pool succeeded.",
	}, []string{"pool"})
	if err := reg.Register(g); err != nil {
		return nil, errors.Trace(err)
	}
	return g, nil
}
