package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystem = "querybridge"

// Recorder is what the query builders need from a metrics backend.
// *Metrics implements it.
type Recorder interface {
	// ObserveQuery counts one finalized statement or document operation and
	// records its duration. A nil err counts as "success".
	ObserveQuery(engine, operation string, start time.Time, err error)
}

// Metrics encapsulates the Prometheus registry, the query metrics and the HTTP
// server exposing them.
type Metrics struct {
	// Server serves the /metrics endpoint.
	Server *http.Server

	// Registry is the isolated Prometheus registry of this service.
	Registry *prometheus.Registry

	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// NewMetrics creates a dedicated registry, registers the query metrics (and the
// default runtime collectors when enabled) under a constant service label, and
// prepares the HTTP server.
//
// Registered metrics:
//   - <namespace>_querybridge_queries_total{engine,operation,status}
//   - <namespace>_querybridge_query_duration_seconds{engine,operation}
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    ServiceName: "orders",
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.queriesTotal = createCounterVec(cfg.Namespace, "queries_total",
		"Total number of finalized queries and document operations", []string{"engine", "operation", "status"})
	m.queryDuration = createHistogramVec(cfg.Namespace, "query_duration_seconds",
		"Duration of queries and document operations in seconds", []string{"engine", "operation"}, prometheus.DefBuckets)

	wrappedRegistry.MustRegister(
		m.queriesTotal,
		m.queryDuration,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.Server = &http.Server{
		Addr:    address,
		Handler: mux,
	}

	return m
}
