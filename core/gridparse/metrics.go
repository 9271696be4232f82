package gridparse

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	gridParses         *prometheus.CounterVec
	periodsSynthesized *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec) {
	parses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_parse_total",
			Help: "Grid parse attempts by outcome",
		},
		[]string{"outcome"},
	)
	synth := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_periods_synthesized_total",
			Help: "Recess/Lunch periods synthesized because the input lacked them",
		},
		[]string{"period"},
	)
	return parses, synth
}

func init() {
	gridParses, periodsSynthesized = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers grid parse metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(gridParses, periodsSynthesized)
}

// ResetMetrics reinitializes the collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	gridParses, periodsSynthesized = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
