package metrics

import coremetrics "github.com/kilianp07/timetable/core/metrics"

// MultiSink fanouts import results to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordImportResult forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordImportResult(res coremetrics.ImportResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordImportResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordAttempt forwards attempt records when supported by the sink.
func (m *MultiSink) RecordAttempt(rec coremetrics.AttemptRecord) error {
	for _, s := range m.Sinks {
		if ar, ok := s.(coremetrics.AttemptRecorder); ok {
			if err := ar.RecordAttempt(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
