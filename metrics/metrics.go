// Package metrics provides Prometheus metrics for feed fetching,
// decoding and the arrival fallback paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Fallback reasons
const (
	ReasonStatic   = "static"
	ReasonDownload = "download"
	ReasonDecode   = "decode"
	ReasonEmpty    = "empty"
)

// Metrics holds all collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	FeedFetchesTotal      *prometheus.CounterVec
	FeedDecodeErrorsTotal prometheus.Counter
	ArrivalFallbacksTotal *prometheus.CounterVec
	StaticLoadsTotal      *prometheus.CounterVec
	StaticStations        prometheus.Gauge
}

// New creates and registers all metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	feedFetchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tram_feed_fetches_total",
			Help: "Total number of realtime feed downloads",
		},
		[]string{"result"},
	)

	feedDecodeErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tram_feed_decode_errors_total",
		Help: "Total number of realtime feeds that failed to decode",
	})

	arrivalFallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tram_arrival_fallbacks_total",
			Help: "Total number of times mock arrivals were served instead of realtime data",
		},
		[]string{"reason"},
	)

	staticLoadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tram_static_loads_total",
			Help: "Total number of static archive loads",
		},
		[]string{"result"},
	)

	staticStations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tram_static_stations",
		Help: "Number of stations in the cached static archive",
	})

	registry.MustRegister(
		feedFetchesTotal,
		feedDecodeErrorsTotal,
		arrivalFallbacksTotal,
		staticLoadsTotal,
		staticStations,
	)

	return &Metrics{
		Registry:              registry,
		FeedFetchesTotal:      feedFetchesTotal,
		FeedDecodeErrorsTotal: feedDecodeErrorsTotal,
		ArrivalFallbacksTotal: arrivalFallbacksTotal,
		StaticLoadsTotal:      staticLoadsTotal,
		StaticStations:        staticStations,
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func (m *Metrics) FeedFetched(err error) {
	if m == nil {
		return
	}
	m.FeedFetchesTotal.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) FeedDecodeFailed() {
	if m == nil {
		return
	}
	m.FeedDecodeErrorsTotal.Inc()
}

func (m *Metrics) ArrivalFallback(reason string) {
	if m == nil {
		return
	}
	m.ArrivalFallbacksTotal.WithLabelValues(reason).Inc()
}

// Records a static load attempt. stations is only used on success.
func (m *Metrics) StaticLoaded(stations int, err error) {
	if m == nil {
		return
	}
	m.StaticLoadsTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.StaticStations.Set(float64(stations))
	}
}
