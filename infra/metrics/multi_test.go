package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

type recordingSink struct {
	results  []coremetrics.ImportResult
	attempts []coremetrics.AttemptRecord
}

func (r *recordingSink) RecordImportResult(res coremetrics.ImportResult) error {
	r.results = append(r.results, res)
	return nil
}

func (r *recordingSink) RecordAttempt(rec coremetrics.AttemptRecord) error {
	r.attempts = append(r.attempts, rec)
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	res := coremetrics.ImportResult{
		ID:      "imp-1",
		Mode:    "llm",
		Success: true,
		Days:    5,
		Periods: 7,
		Entries: 21,
		Time:    time.Now(),
	}
	require.NoError(t, m.RecordImportResult(res))
	require.Len(t, a.results, 1)
	require.Len(t, b.results, 1)
	require.Equal(t, "imp-1", a.results[0].ID)
}

func TestMultiSinkSkipsNonAttemptRecorders(t *testing.T) {
	rec := &recordingSink{}
	m := NewMultiSink(coremetrics.NopSink{}, rec)

	require.NoError(t, m.RecordAttempt(coremetrics.AttemptRecord{
		ImportID: "imp-2",
		Model:    "alpha",
		Outcome:  "success",
		Time:     time.Now(),
	}))
	require.Len(t, rec.attempts, 1)
}

func TestNewSinkDefaults(t *testing.T) {
	var cfg coremetrics.Config
	cfg.SetDefaults()
	require.True(t, cfg.Prometheus)

	sink, err := NewSink(cfg)
	require.NoError(t, err)
	require.NotNil(t, sink)
	require.NoError(t, sink.RecordImportResult(coremetrics.ImportResult{Mode: "grid", Success: true}))
}
