// Package metrics registra los contadores Prometheus del servicio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MediaResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_resolutions_total",
		Help: "Resoluciones de media por tipo y estado final.",
	}, []string{"kind", "state"})

	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Sub-requests al catálogo externo por recurso y resultado.",
	}, []string{"resource", "result"})

	RecommenderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recommender_requests_total",
		Help: "Llamadas al recomendador por estrategia y resultado.",
	}, []string{"strategy", "result"})

	RecommenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommender_request_duration_seconds",
		Help:    "Latencia de las llamadas al recomendador.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"strategy"})

	// 0 closed, 1 half-open, 2 open
	RecommenderCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recommender_circuit_state",
		Help: "Estado del circuit breaker del recomendador.",
	})

	ListCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "list_cache_lookups_total",
		Help: "Lecturas del cache Redis de listas (hit/miss/error).",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests HTTP atendidos.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de requests HTTP.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
