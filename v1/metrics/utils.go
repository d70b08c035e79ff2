package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ObserveQuery implements Recorder.
// Example: defer func(start time.Time) { m.ObserveQuery("mysql", "get", start, err) }(time.Now())
func (m *Metrics) ObserveQuery(engine, operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.queriesTotal.WithLabelValues(engine, operation, status).Inc()
	m.queryDuration.WithLabelValues(engine, operation).Observe(time.Since(start).Seconds())
}

// Nop is a Recorder that drops every observation.
type Nop struct{}

func (Nop) ObserveQuery(string, string, time.Time, error) {}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
