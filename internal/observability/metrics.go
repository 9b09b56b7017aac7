package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	JobsConsumed    prometheus.Counter
	RecordsProduced prometheus.Counter
	JobErrors       *prometheus.CounterVec // labels: kind={parse,load,shape,value,other}
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Normalization metrics.
	GridRows         *prometheus.CounterVec // labels: kind={data,noise}
	RecordsExcluded  *prometheus.CounterVec // labels: reason={empty,missing,out_of_bounds,invalid_date}
	GridCache        *prometheus.CounterVec // labels: result={hit,miss}
	NormalizeSeconds prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.JobsConsumed,
		m.RecordsProduced,
		m.JobErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.GridRows,
		m.RecordsExcluded,
		m.GridCache,
		m.NormalizeSeconds,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		JobsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "jobs_consumed_total",
			Help:      "Total grid jobs read from the source topic.",
		}),
		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "records_produced_total",
			Help:      "Total daily records written to the sink topic.",
		}),
		JobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "job_errors_total",
			Help:      "Grid jobs that failed, by kind.",
		}, []string{"kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "batch_size",
			Help:      "Number of jobs per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		GridRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "grid_rows_total",
			Help:      "Grid rows read, by kind.",
		}, []string{"kind"}),
		RecordsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "records_excluded_total",
			Help:      "Grid cells that produced no record, by reason.",
		}, []string{"reason"}),
		GridCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "grid_cache_total",
			Help:      "Grid cache lookups by result.",
		}, []string{"result"}),
		NormalizeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_etl",
			Name:      "normalize_duration_seconds",
			Help:      "Duration of a single grid normalization.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// ObserveGridCache records a grid cache lookup. It matches gridfile.CacheObserver.
func (m *Metrics) ObserveGridCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.GridCache.WithLabelValues(result).Inc()
}
