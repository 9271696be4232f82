package orchestrate

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	attemptLatency     *prometheus.HistogramVec
	attemptsTotal      *prometheus.CounterVec
	candidateExhausted *prometheus.CounterVec
	repairsTotal       *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_attempt_latency_seconds",
			Help:    "Latency of one completion attempt",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	att := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_attempts_total",
			Help: "Completion attempts by outcome",
		},
		[]string{"outcome"},
	)
	exh := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_candidate_exhausted_total",
			Help: "Candidates marked exhausted, by what was marked",
		},
		[]string{"kind"},
	)
	rep := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "json_repair_total",
			Help: "JSON repair outcomes by strategy",
		},
		[]string{"strategy"},
	)
	return lat, att, exh, rep
}

func init() {
	attemptLatency, attemptsTotal, candidateExhausted, repairsTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers orchestrator metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(attemptLatency, attemptsTotal, candidateExhausted, repairsTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	attemptLatency, attemptsTotal, candidateExhausted, repairsTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
