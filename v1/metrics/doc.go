// Package metrics exposes Prometheus metrics for query builder activity.
//
// Every finalized relational statement (Execute, Get) and every document
// operation (Get, Insert, Update, Delete, CreateIndex) is reported through the
// Recorder interface:
//
//	querybridge_queries_total{engine="mysql",operation="get",status="success"} 12
//	querybridge_query_duration_seconds_bucket{engine="mongodb",operation="insert",le="0.005"} 3
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "orders",
//	})
//	go m.Server.ListenAndServe()
//
//	client, err := querybuilder.NewClient(ctx, cfg, querybuilder.WithMetrics(m))
//
// # FX Module Integration
//
// FXModule provides *Metrics and Recorder, starts the HTTP server on application
// start and shuts it down on stop. It needs a metrics.Config and a *logger.Logger
// in the container.
//
// Nop is the Recorder used when no metrics backend is injected.
package metrics
