// Package orchestrate drives the external generation endpoint through a
// ranked list of (model, credential) candidates, classifying failures to
// decide between advancing and aborting, and repairing malformed output
// before giving up on a candidate.
package orchestrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/timetable/core/classify"
	"github.com/kilianp07/timetable/core/events"
	"github.com/kilianp07/timetable/core/jsonrepair"
	"github.com/kilianp07/timetable/core/llm"
	"github.com/kilianp07/timetable/core/logger"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/normalize"
	"github.com/kilianp07/timetable/internal/eventbus"
)

// Config parameterizes one orchestrator. Candidate order is derived from
// the two lists: credentials outer, models inner.
type Config struct {
	Models      []string `json:"models"`
	Credentials []string `json:"credentials"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	if len(c.Credentials) == 0 {
		return fmt.Errorf("at least one credential is required")
	}
	return nil
}

// Result is the outcome of one Parse call. On failure, Diagnosis summarizes
// the whole run, not just the last candidate.
type Result struct {
	Success        bool
	Schedule       *model.Schedule
	UsedModel      string
	UsedCredential int
	Attempts       int
	Err            error
	Diagnosis      *classify.Diagnosis
	RepairStrategy jsonrepair.Strategy
}

// Orchestrator walks candidates sequentially until one yields a valid
// schedule. It holds no cross-call state: every Parse creates its own
// AttemptBudget.
type Orchestrator struct {
	client   llm.Client
	cfg      Config
	log      logger.Logger
	attempts *eventbus.TypedBus[events.AttemptEvent]
}

// New creates an Orchestrator. attempts may be nil.
func New(client llm.Client, cfg Config, log logger.Logger, attempts *eventbus.TypedBus[events.AttemptEvent]) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("orchestrate: nil client")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{client: client, cfg: cfg, log: log, attempts: attempts}, nil
}

// Parse converts raw timetable text through the generation endpoint.
func (o *Orchestrator) Parse(ctx context.Context, text string) Result {
	budget := newAttemptBudget()
	candidates := buildCandidates(o.cfg.Credentials, o.cfg.Models)
	result := Result{}
	var lastParseErr error

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			// Cancellation skips the remaining candidates without side
			// effects.
			result.Err = err
			return result
		}
		if budget.Skippable(cand) {
			continue
		}
		result.Attempts++

		resp, err := o.attempt(ctx, cand, text)
		if err != nil {
			if errors.Is(err, llm.ErrInvalidRequest) {
				// A client-side bug; another candidate cannot fix it.
				attemptsTotal.WithLabelValues("aborted").Inc()
				o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "aborted", Err: err})
				result.Err = err
				diag := classify.Classify(err.Error(), 0)
				diag.Category = classify.MalformedRequest
				result.Diagnosis = &diag
				return result
			}
			// Transport failure: same treatment as a network restriction.
			diag := classify.Classify(err.Error(), 0)
			o.exhaust(budget, cand, classify.NetworkRestriction)
			o.log.Warnf("candidate %s/#%d transport failure: %v", cand.Model, cand.CredentialIndex, err)
			attemptsTotal.WithLabelValues("network").Inc()
			o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "exhausted", Category: diag.Category, Err: err})
			continue
		}

		if !resp.OK() {
			diag := classify.Classify(resp.Body, resp.StatusCode)
			if !diag.Category.Transient() {
				attemptsTotal.WithLabelValues("aborted").Inc()
				o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "aborted", Category: diag.Category})
				result.Err = fmt.Errorf("generation failed: %s", diag.Category)
				result.Diagnosis = &diag
				return result
			}
			o.exhaust(budget, cand, diag.Category)
			o.log.Warnf("candidate %s/#%d exhausted: %s", cand.Model, cand.CredentialIndex, diag.Category)
			attemptsTotal.WithLabelValues(string(diag.Category)).Inc()
			o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "exhausted", Category: diag.Category})
			continue
		}

		sched, strategy, err := decodeSchedule(resp.Content)
		if err != nil {
			// One candidate's malformed JSON does not doom the run.
			lastParseErr = err
			o.log.Warnf("candidate %s/#%d returned unusable JSON: %v", cand.Model, cand.CredentialIndex, err)
			attemptsTotal.WithLabelValues("parse_failure").Inc()
			o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "parse_failure", Err: err})
			continue
		}
		if strategy != jsonrepair.StrategyVerbatim {
			repairsTotal.WithLabelValues(string(strategy)).Inc()
		}

		if !hasRealContent(sched) {
			// Well-formed but content-free: a silent failure.
			lastParseErr = fmt.Errorf("generator returned placeholder-only content")
			o.log.Warnf("candidate %s/#%d returned placeholder-only schedule", cand.Model, cand.CredentialIndex)
			attemptsTotal.WithLabelValues("placeholder").Inc()
			o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "parse_failure", Err: lastParseErr})
			continue
		}

		normalizeSchedule(sched)
		attemptsTotal.WithLabelValues("success").Inc()
		o.publish(events.AttemptEvent{Model: cand.Model, CredentialIndex: cand.CredentialIndex, Outcome: "success"})
		o.log.Infof("parsed via %s (credential #%d, attempt %d)", cand.Model, cand.CredentialIndex, result.Attempts)

		result.Success = true
		result.Schedule = sched
		result.UsedModel = cand.Model
		result.UsedCredential = cand.CredentialIndex
		result.RepairStrategy = strategy
		return result
	}

	diag := exhaustionDiagnosis(budget, lastParseErr)
	result.Err = fmt.Errorf("all models and credentials failed")
	result.Diagnosis = &diag
	return result
}

// attempt issues one completion and records its latency.
func (o *Orchestrator) attempt(ctx context.Context, cand Candidate, text string) (llm.Response, error) {
	start := time.Now()
	resp, err := o.client.Complete(ctx, llm.CompletionRequest{
		Model:       cand.Model,
		Credential:  cand.Credential,
		System:      systemPrompt,
		User:        buildUserPrompt(text),
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
		JSONOnly:    true,
	})
	attemptLatency.WithLabelValues(cand.Model).Observe(time.Since(start).Seconds())
	return resp, err
}

// exhaust marks the credential or the model depending on what the category
// blames.
func (o *Orchestrator) exhaust(budget *AttemptBudget, cand Candidate, category classify.Category) {
	switch category {
	case classify.RateLimiting, classify.Authorization:
		budget.MarkCredential(cand.CredentialIndex)
		candidateExhausted.WithLabelValues("credential").Inc()
	case classify.ProviderError, classify.ProviderRateLimit:
		budget.MarkModel(cand.ModelIndex)
		candidateExhausted.WithLabelValues("model").Inc()
	default:
		// Network restrictions blame neither list; the pair just failed.
		candidateExhausted.WithLabelValues("candidate").Inc()
	}
}

func (o *Orchestrator) publish(e events.AttemptEvent) {
	if o.attempts != nil {
		o.attempts.Publish(e)
	}
}

// decodeSchedule parses the generated content, repairing when a straight
// parse fails.
func decodeSchedule(content string) (*model.Schedule, jsonrepair.Strategy, error) {
	content = stripFences(content)
	var s model.Schedule
	err := json.Unmarshal([]byte(content), &s)
	if err == nil {
		s.EnsureKeys()
		return &s, jsonrepair.StrategyVerbatim, nil
	}
	offset := 0
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = int(syntaxErr.Offset)
	}
	repaired, strategy, ok := jsonrepair.RepairSchedule(content, offset)
	if !ok {
		return nil, "", fmt.Errorf("unrepairable generator output: %w", err)
	}
	return repaired, strategy, nil
}

// normalizeSchedule runs the class normalizer over flat-string entries.
func normalizeSchedule(s *model.Schedule) {
	for day, dayClasses := range s.Classes {
		for period, entries := range dayClasses {
			for i, e := range entries {
				entries[i] = normalize.NormalizeEntry(e)
			}
			s.Classes[day][period] = entries
		}
	}
}

// exhaustionDiagnosis aggregates a terminal failure across all candidates
// so the caller sees the whole picture, not the last candidate's error.
func exhaustionDiagnosis(budget *AttemptBudget, lastParseErr error) classify.Diagnosis {
	causes := []string{
		fmt.Sprintf("all models and credentials failed (%d credentials and %d models marked exhausted)",
			budget.ExhaustedCredentials(), budget.ExhaustedModels()),
	}
	if lastParseErr != nil {
		causes = append(causes, "at least one candidate returned unusable output: "+lastParseErr.Error())
	}
	return classify.Diagnosis{
		Category: classify.Unclassified,
		Causes:   causes,
		Recommendations: []string{
			"Wait a minute and retry the import",
			"Add more credentials or models to the candidate list",
			"Use the deterministic grid import if the text is tabular",
		},
		Severity: classify.SeverityHigh,
	}
}
