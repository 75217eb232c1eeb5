package spacetraveling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/spacetraveling/prismic"
)

// Metrics holds the collectors of one App. Each App owns a registry so tests
// can build several without colliding on the default one.
type Metrics struct {
	reg *prometheus.Registry

	cmsRequests *prometheus.CounterVec
	cmsDuration *prometheus.HistogramVec
	cacheLookup *prometheus.CounterVec
	loadMore    *prometheus.CounterVec
}

// NewMetrics registers the site's collectors plus the Go and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cmsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacetraveling",
			Name:      "cms_requests_total",
			Help:      "Content API requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		cmsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spacetraveling",
			Name:      "cms_request_duration_seconds",
			Help:      "Content API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		cacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacetraveling",
			Name:      "cache_lookups_total",
			Help:      "Post cache lookups by entry kind and result.",
		}, []string{"kind", "result"}),
		loadMore: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spacetraveling",
			Name:      "load_more_total",
			Help:      "Load-more requests by outcome.",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cmsRequests,
		m.cmsDuration,
		m.cacheLookup,
		m.loadMore,
	)
	return m
}

// ObserveCMS is a prismic.Observer. The recording methods are no-ops on a
// nil *Metrics.
func (m *Metrics) ObserveCMS(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.cmsDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.cmsRequests.WithLabelValues(kind, outcome(err)).Inc()
}

// CacheLookup counts a hit, miss or stale fallback for kind.
func (m *Metrics) CacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.cacheLookup.WithLabelValues(kind, result).Inc()
}

// LoadMore counts one load-more request.
func (m *Metrics) LoadMore(err error) {
	if m == nil {
		return
	}
	m.loadMore.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func outcome(err error) string {
	var se *prismic.StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, prismic.ErrNotFound), errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed"
	case errors.Is(err, ErrLoadInProgress):
		return "in_progress"
	case errors.As(err, &se):
		return strconv.Itoa(se.Code/100) + "xx"
	default:
		return "error"
	}
}
