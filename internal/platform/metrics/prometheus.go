package metrics

import (
	"net/http"

	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the custom Prometheus metrics of the service.
type Manager struct {
	Registry                *prometheus.Registry
	ListingsPublishedTotal  prometheus.Counter
	ListingEditsTotal       prometheus.Counter
	ValidationFailuresTotal *prometheus.CounterVec
	SearchesTotal           prometheus.Counter
	SearchLatency           prometheus.Histogram
	APIErrorsTotal          *prometheus.CounterVec
}

// NewManager initializes and registers the service metrics on a dedicated registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	listingsPublishedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_published_total",
		Help:      "Total number of listings published.",
	})
	listingEditsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_edits_total",
		Help:      "Total number of listing edits applied.",
	})
	validationFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "validation_failures_total",
		Help:      "Total number of field validation failures by field type.",
	}, []string{"field_type"})
	searchesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "searches_total",
		Help:      "Total number of listing search requests.",
	})
	searchLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "search_latency_seconds",
		Help:      "Latency of listing search requests.",
		Buckets:   prometheus.DefBuckets,
	})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by handler.",
	}, []string{"handler", "error_type"})

	registry.MustRegister(
		listingsPublishedTotal,
		listingEditsTotal,
		validationFailuresTotal,
		searchesTotal,
		searchLatency,
		apiErrorsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:                registry,
		ListingsPublishedTotal:  listingsPublishedTotal,
		ListingEditsTotal:       listingEditsTotal,
		ValidationFailuresTotal: validationFailuresTotal,
		SearchesTotal:           searchesTotal,
		SearchLatency:           searchLatency,
		APIErrorsTotal:          apiErrorsTotal,
	}
}

// StartServer exposes the registry on /metrics.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
