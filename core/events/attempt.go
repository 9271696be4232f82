package events

import "github.com/kilianp07/timetable/core/classify"

// AttemptEvent is emitted after each orchestrator candidate attempt.
// Outcome can be "success", "exhausted", "parse_failure", or "aborted".
type AttemptEvent struct {
	Model           string
	CredentialIndex int
	Outcome         string
	Category        classify.Category
	Err             error
}
