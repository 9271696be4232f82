// Package app wires the parsers, sinks and notifier into one importer
// service driven by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/classify"
	"github.com/kilianp07/timetable/core/events"
	"github.com/kilianp07/timetable/core/gridparse"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/model"
	corenotify "github.com/kilianp07/timetable/core/notify"
	"github.com/kilianp07/timetable/core/orchestrate"
	"github.com/kilianp07/timetable/infra/llm"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/metrics"
	"github.com/kilianp07/timetable/infra/notify"
	"github.com/kilianp07/timetable/internal/eventbus"
)

// Import modes accepted by Importer.Import.
const (
	ModeGrid = "grid"
	ModeLLM  = "llm"
	ModeAuto = "auto"
)

// Importer converts raw timetable text into structured schedules, recording
// every invocation on the configured sinks.
type Importer struct {
	parser   *gridparse.Parser
	orch     *orchestrate.Orchestrator
	sink     coremetrics.MetricsSink
	notifier corenotify.Notifier
	bus      eventbus.EventBus
	attempts *eventbus.TypedBus[events.AttemptEvent]
	log      logger.Logger

	mu        sync.Mutex
	currentID string
}

// New creates an Importer from the configuration.
func New(cfg *config.Config) (*Importer, error) {
	logg := logger.New("importer")

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var notifier corenotify.Notifier = corenotify.NopNotifier{}
	if cfg.Notify.Enabled {
		n, err := notify.NewMQTTNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = n
	}

	imp := &Importer{
		parser:   gridparse.New(cfg.Parser, logger.New("grid-parser")),
		sink:     sink,
		notifier: notifier,
		bus:      eventbus.New(),
		attempts: eventbus.NewTyped[events.AttemptEvent](),
		log:      logg,
	}

	if cfg.LLM.Enabled() {
		timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		client := llm.New(cfg.LLM.BaseURL, timeout, logger.New("llm-client"))
		orch, err := orchestrate.New(client, cfg.LLM.Orchestrate(), logger.New("orchestrator"), imp.attempts)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
		imp.orch = orch
	}

	go imp.forwardAttempts(imp.attempts.Subscribe())
	return imp, nil
}

// forwardAttempts relays orchestrator attempt events to sinks that record
// per-attempt data.
func (s *Importer) forwardAttempts(ch <-chan events.AttemptEvent) {
	rec, ok := s.sink.(coremetrics.AttemptRecorder)
	if !ok {
		return
	}
	for a := range ch {
		if err := rec.RecordAttempt(coremetrics.AttemptRecord{
			ImportID: s.importID(),
			Model:    a.Model,
			Outcome:  a.Outcome,
			Time:     time.Now(),
		}); err != nil {
			s.log.Warnf("record attempt: %v", err)
		}
	}
}

func (s *Importer) importID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *Importer) setImportID(id string) {
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
}

// Import parses raw timetable text. Mode selects the deterministic grid
// parser, the generation endpoint, or auto which tries the grid parser and
// falls back to generation when the text is not tabular.
func (s *Importer) Import(ctx context.Context, mode, text string) (*model.Schedule, error) {
	id := uuid.NewString()
	s.setImportID(id)
	defer s.setImportID("")
	start := time.Now()

	sched, attempts, usedModel, strategy, err := s.run(ctx, mode, text)

	res := coremetrics.ImportResult{
		ID:             id,
		Mode:           mode,
		Success:        err == nil,
		Attempts:       attempts,
		UsedModel:      usedModel,
		RepairStrategy: strategy,
		Duration:       time.Since(start),
		Time:           time.Now(),
	}
	notif := corenotify.ImportNotification{ID: id, Mode: mode, Success: err == nil, Time: res.Time}
	if err != nil {
		notif.Error = err.Error()
		var diag *DiagnosedError
		if errors.As(err, &diag) && diag.Diagnosis != nil {
			res.FailureCategory = string(diag.Diagnosis.Category)
		}
	} else {
		res.Days = len(sched.Days)
		res.Periods = len(sched.Periods)
		res.Entries = countEntries(sched)
		notif.Days = res.Days
		notif.Periods = res.Periods
		notif.Entries = res.Entries
	}

	if rerr := s.sink.RecordImportResult(res); rerr != nil {
		s.log.Warnf("record import result: %v", rerr)
	}
	if nerr := s.notifier.NotifyImport(notif); nerr != nil {
		s.log.Warnf("notify import: %v", nerr)
	}
	s.bus.Publish(events.ImportEvent{ID: id, Mode: mode, Success: err == nil, Days: res.Days, Periods: res.Periods, Err: err})

	if err != nil {
		s.log.Warnf("import %s failed after %s: %v", id, res.Duration, err)
		return nil, err
	}
	s.log.Infof("import %s done in %s: %d days, %d periods, %d entries", id, res.Duration, res.Days, res.Periods, res.Entries)
	return sched, nil
}

func (s *Importer) run(ctx context.Context, mode, text string) (sched *model.Schedule, attempts int, usedModel, strategy string, err error) {
	switch mode {
	case ModeGrid:
		sched, err = s.parser.Parse(text)
		return sched, 0, "", "", err
	case ModeLLM:
		return s.runLLM(ctx, text)
	case ModeAuto:
		sched, err = s.parser.Parse(text)
		if err == nil {
			return sched, 0, "", "", nil
		}
		var pf *model.ParseFailure
		if !errors.As(err, &pf) || s.orch == nil {
			return nil, 0, "", "", err
		}
		s.log.Infof("grid parse failed (%s), falling back to generation", pf.Kind)
		return s.runLLM(ctx, text)
	default:
		return nil, 0, "", "", fmt.Errorf("unknown import mode %q", mode)
	}
}

func (s *Importer) runLLM(ctx context.Context, text string) (*model.Schedule, int, string, string, error) {
	if s.orch == nil {
		return nil, 0, "", "", fmt.Errorf("generation import is not configured")
	}
	res := s.orch.Parse(ctx, text)
	if !res.Success {
		return nil, res.Attempts, "", "", &DiagnosedError{Err: res.Err, Diagnosis: res.Diagnosis}
	}
	return res.Schedule, res.Attempts, res.UsedModel, string(res.RepairStrategy), nil
}

// Events exposes the import outcome stream for observers.
func (s *Importer) Events() <-chan eventbus.Event {
	return s.bus.Subscribe()
}

// Close releases resources held by the importer.
func (s *Importer) Close() error {
	s.attempts.Close()
	s.bus.Close()
	s.notifier.Close()
	return nil
}

// DiagnosedError pairs a terminal import error with its classification so
// callers can render causes and recommendations.
type DiagnosedError struct {
	Err       error
	Diagnosis *classify.Diagnosis
}

func (e *DiagnosedError) Error() string {
	if e.Diagnosis != nil {
		return fmt.Sprintf("%v (%s)", e.Err, e.Diagnosis.Category)
	}
	return e.Err.Error()
}

func (e *DiagnosedError) Unwrap() error { return e.Err }

func countEntries(s *model.Schedule) int {
	n := 0
	for _, dayClasses := range s.Classes {
		for _, entries := range dayClasses {
			n += len(entries)
		}
	}
	return n
}
