package metrics

import (
	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

// NewSink builds the configured sinks and wraps them in a MultiSink when
// more than one is enabled. With nothing enabled a NopSink is returned.
func NewSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	var sinks []coremetrics.MetricsSink

	if cfg.Prometheus {
		s, err := NewPromSink()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Influx.Enabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket))
	}

	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
