package metrics

import "time"

// ImportResult represents one finished import invocation to be recorded.
type ImportResult struct {
	ID              string
	Mode            string
	Success         bool
	Attempts        int
	UsedModel       string
	RepairStrategy  string
	FailureCategory string
	Days            int
	Periods         int
	Entries         int
	Duration        time.Duration
	Time            time.Time
}

// MetricsSink records import results for observability purposes.
type MetricsSink interface {
	RecordImportResult(res ImportResult) error
}

// AttemptRecord captures one generation attempt inside an import.
type AttemptRecord struct {
	ImportID string
	Model    string
	Outcome  string
	Time     time.Time
}

// AttemptRecorder is implemented by sinks able to record per-attempt data.
type AttemptRecorder interface {
	RecordAttempt(rec AttemptRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordImportResult(ImportResult) error { return nil }
func (NopSink) RecordAttempt(AttemptRecord) error     { return nil }
