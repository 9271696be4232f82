package metrics

import (
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records import results in Prometheus metrics.
type PromSink struct {
	imports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entries  *prometheus.HistogramVec
}

// NewPromSink registers import metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imports_total",
		Help: "Total number of import invocations",
	}, []string{"mode", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Wall time of one import invocation",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	entries := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_entries",
		Help:    "Class entries produced per successful import",
		Buckets: []float64{0, 5, 10, 20, 40, 80},
	}, []string{"mode"})

	if err := reg.Register(imports); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			imports = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(entries); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			entries = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{imports: imports, duration: duration, entries: entries}, nil
}

// RecordImportResult increments the counters for one finished import.
func (s *PromSink) RecordImportResult(res coremetrics.ImportResult) error {
	outcome := "failure"
	if res.Success {
		outcome = "success"
	}
	s.imports.WithLabelValues(res.Mode, outcome).Inc()
	s.duration.WithLabelValues(res.Mode).Observe(res.Duration.Seconds())
	if res.Success {
		s.entries.WithLabelValues(res.Mode).Observe(float64(res.Entries))
	}
	return nil
}
