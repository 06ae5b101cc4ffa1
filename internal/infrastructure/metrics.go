package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts what the ingestion pipeline does to each row. Skips
// are labeled by reason so a spike of malformed amounts is visible
// without digging through logs.
type Metrics struct {
	registry *prometheus.Registry

	RowsIngested prometheus.Counter
	RowsSkipped  *prometheus.CounterVec
	BatchesRun   prometheus.Counter
}

// NewMetrics builds and registers the pipeline metrics on a private
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Rows accepted into the aggregation pass",
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_skipped_total",
			Help: "Rows dropped before aggregation, by reason",
		}, []string{"reason"}),
		BatchesRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_batches_total",
			Help: "Completed import batches",
		}),
	}
	registry.MustRegister(m.RowsIngested, m.RowsSkipped, m.BatchesRun)
	return m
}

// Handler exposes the registry for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
