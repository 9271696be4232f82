package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kilianp07/timetable/core/classify"
	"github.com/kilianp07/timetable/core/events"
	"github.com/kilianp07/timetable/core/jsonrepair"
	"github.com/kilianp07/timetable/core/llm"
	"github.com/kilianp07/timetable/core/logger"
	"github.com/kilianp07/timetable/internal/eventbus"
)

const validPayload = `{
  "days": ["Monday"],
  "periods": [{"name": "Period 1", "startTime": "8:40am", "endTime": "9:40am"}],
  "classes": {
    "Monday": {
      "Period 1": [{
        "subject": "Mathematics",
        "code": "10MAT1",
        "room": "M 12",
        "teacher": "Mr Smith",
        "startTime": "8:40am",
        "endTime": "9:40am"
      }]
    }
  }
}`

const placeholderPayload = `{
  "days": ["Monday"],
  "periods": [{"name": "Period 1", "startTime": "8:40am", "endTime": "9:40am"}],
  "classes": {
    "Monday": {
      "Period 1": [{
        "subject": "Unknown",
        "code": "",
        "room": "",
        "teacher": "",
        "startTime": "8:40am",
        "endTime": "9:40am"
      }]
    }
  }
}`

// scriptedClient replays a fixed sequence of responses and records every
// request it receives.
type scriptedClient struct {
	responses []llm.Response
	errs      []error
	calls     []llm.CompletionRequest
}

func (c *scriptedClient) Complete(_ context.Context, req llm.CompletionRequest) (llm.Response, error) {
	i := len(c.calls)
	c.calls = append(c.calls, req)
	if i >= len(c.responses) {
		return llm.Response{}, fmt.Errorf("unexpected call %d", i)
	}
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	return c.responses[i], err
}

func newTestOrchestrator(t *testing.T, client llm.Client, models, credentials []string) *Orchestrator {
	t.Helper()
	o, err := New(client, Config{Models: models, Credentials: credentials}, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func TestParseRotatesCredentialsOnRateLimit(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 429, Body: "rate limit exceeded"},
			{StatusCode: 429, Body: "rate limit exceeded"},
			{StatusCode: 200, Content: validPayload},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1", "k2", "k3"})

	res := o.Parse(context.Background(), "raw timetable text")
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if res.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", res.Attempts)
	}
	if res.UsedCredential != 2 {
		t.Errorf("expected credential index 2, got %d", res.UsedCredential)
	}
	if res.UsedModel != "alpha" {
		t.Errorf("expected model alpha, got %q", res.UsedModel)
	}
	if res.Schedule == nil || len(res.Schedule.Classes["Monday"]["Period 1"]) != 1 {
		t.Fatalf("schedule content missing: %+v", res.Schedule)
	}
	if got := client.calls[2].Credential; got != "k3" {
		t.Errorf("third attempt should use k3, got %q", got)
	}
}

func TestParsePublishesAttemptEvents(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 429, Body: "rate limit exceeded"},
			{StatusCode: 200, Content: validPayload},
		},
	}
	attempts := eventbus.NewTyped[events.AttemptEvent]()
	ch := attempts.Subscribe()
	defer attempts.Close()

	o, err := New(client, Config{Models: []string{"alpha"}, Credentials: []string{"k1", "k2"}}, logger.NopLogger{}, attempts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := o.Parse(context.Background(), "raw timetable text")
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}

	first := <-ch
	if first.Outcome != "exhausted" || first.Category != classify.RateLimiting {
		t.Fatalf("expected exhausted rate_limiting event, got %+v", first)
	}
	second := <-ch
	if second.Outcome != "success" || second.Model != "alpha" || second.CredentialIndex != 1 {
		t.Fatalf("expected success event for alpha/#1, got %+v", second)
	}
}

func TestParseSkipsModelAfterProviderRateLimit(t *testing.T) {
	// A provider-side rate limit blames the model, not the credential, so
	// the same credential retries with the next model.
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 429, Body: `{"error": "provider returned error: rate limit from upstream"}`},
			{StatusCode: 200, Content: validPayload},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha", "beta"}, []string{"k1", "k2"})

	res := o.Parse(context.Background(), "text")
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if res.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", res.Attempts)
	}
	if res.UsedModel != "beta" {
		t.Errorf("expected model beta, got %q", res.UsedModel)
	}
	if res.UsedCredential != 0 {
		t.Errorf("expected credential index 0, got %d", res.UsedCredential)
	}
}

func TestParseAbortsOnMalformedRequest(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 400, Body: `{"error": "invalid request: unsupported parameter"}`},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1", "k2"})

	res := o.Parse(context.Background(), "text")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Attempts != 1 {
		t.Errorf("a non-transient failure must not retry, got %d attempts", res.Attempts)
	}
	if res.Diagnosis == nil || res.Diagnosis.Category != classify.MalformedRequest {
		t.Fatalf("expected malformed_request diagnosis, got %+v", res.Diagnosis)
	}
}

func TestParseInvalidRequestErrorAborts(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{{}},
		errs:      []error{fmt.Errorf("marshal body: %w", llm.ErrInvalidRequest)},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1", "k2"})

	res := o.Parse(context.Background(), "text")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", res.Attempts)
	}
	if !errors.Is(res.Err, llm.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", res.Err)
	}
	if res.Diagnosis == nil || res.Diagnosis.Category != classify.MalformedRequest {
		t.Fatalf("expected malformed_request diagnosis, got %+v", res.Diagnosis)
	}
}

func TestParseAdvancesOnTransportError(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{},
			{StatusCode: 200, Content: validPayload},
		},
		errs: []error{errors.New("dial tcp: connection refused")},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1", "k2"})

	res := o.Parse(context.Background(), "text")
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if res.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", res.Attempts)
	}
}

func TestParseStripsCodeFences(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 200, Content: "```json\n" + validPayload + "\n```"},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1"})

	res := o.Parse(context.Background(), "text")
	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if res.RepairStrategy != jsonrepair.StrategyVerbatim {
		t.Errorf("fenced but complete JSON should not need repair, got %q", res.RepairStrategy)
	}
}

func TestParseRepairsTruncatedOutput(t *testing.T) {
	// Cut after the last complete class entry, as a token-limited generator
	// would.
	truncated := `{"days":["Monday"],"periods":[{"name":"Period 1","startTime":"8:40am","endTime":"9:40am"}],"classes":{"Monday":{"Period 1":[{"subject":"Mathematics","code":"10MAT1","room":"M 12","teacher":"Mr Smith","startTime":"8:40am","endTime":"9:40am"}`
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 200, Content: truncated},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1"})

	res := o.Parse(context.Background(), "text")
	if !res.Success {
		t.Fatalf("expected repaired success, got err=%v", res.Err)
	}
	if res.RepairStrategy == jsonrepair.StrategyVerbatim {
		t.Error("expected a repair strategy to be recorded")
	}
	if len(res.Schedule.Classes["Monday"]["Period 1"]) != 1 {
		t.Fatalf("repaired schedule lost the entry: %+v", res.Schedule)
	}
}

func TestParseRejectsPlaceholderOnlyOutput(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 200, Content: placeholderPayload},
			{StatusCode: 200, Content: validPayload},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1", "k2"})

	res := o.Parse(context.Background(), "text")
	if !res.Success {
		t.Fatalf("expected success on second candidate, got err=%v", res.Err)
	}
	if res.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", res.Attempts)
	}
	if res.UsedCredential != 1 {
		t.Errorf("expected credential index 1, got %d", res.UsedCredential)
	}
}

func TestParseAggregatesExhaustion(t *testing.T) {
	client := &scriptedClient{
		responses: []llm.Response{
			{StatusCode: 429, Body: "rate limit exceeded"},
			{StatusCode: 429, Body: "rate limit exceeded"},
		},
	}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1", "k2"})

	res := o.Parse(context.Background(), "text")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err == nil {
		t.Fatal("expected an aggregated error")
	}
	if res.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", res.Attempts)
	}
	if res.Diagnosis == nil {
		t.Fatal("expected a diagnosis")
	}
	if len(res.Diagnosis.Causes) == 0 {
		t.Error("diagnosis should carry at least one cause")
	}
}

func TestParseHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{}
	o := newTestOrchestrator(t, client, []string{"alpha"}, []string{"k1"})

	res := o.Parse(ctx, "text")
	if res.Success {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
	if res.Attempts != 0 {
		t.Errorf("expected no attempts after cancellation, got %d", res.Attempts)
	}
}

func TestBuildCandidatesOrder(t *testing.T) {
	cands := buildCandidates([]string{"k1", "k2"}, []string{"a", "b"})
	want := []Candidate{
		{Model: "a", Credential: "k1", ModelIndex: 0, CredentialIndex: 0},
		{Model: "b", Credential: "k1", ModelIndex: 1, CredentialIndex: 0},
		{Model: "a", Credential: "k2", ModelIndex: 0, CredentialIndex: 1},
		{Model: "b", Credential: "k2", ModelIndex: 1, CredentialIndex: 1},
	}
	if len(cands) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(cands))
	}
	for i := range want {
		if cands[i] != want[i] {
			t.Errorf("candidate %d: got %+v, want %+v", i, cands[i], want[i])
		}
	}
}

func TestAttemptBudgetSkipsMarked(t *testing.T) {
	b := newAttemptBudget()
	b.MarkCredential(0)
	b.MarkModel(1)

	if !b.Skippable(Candidate{CredentialIndex: 0, ModelIndex: 0}) {
		t.Error("marked credential must be skippable")
	}
	if !b.Skippable(Candidate{CredentialIndex: 1, ModelIndex: 1}) {
		t.Error("marked model must be skippable")
	}
	if b.Skippable(Candidate{CredentialIndex: 1, ModelIndex: 0}) {
		t.Error("unmarked pair must not be skippable")
	}
	if b.ExhaustedCredentials() != 1 || b.ExhaustedModels() != 1 {
		t.Errorf("counts wrong: %d credentials, %d models", b.ExhaustedCredentials(), b.ExhaustedModels())
	}
}
