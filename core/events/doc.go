// Package events defines the import related events emitted on the event bus.
//
// Available event types:
//   - AttemptEvent: outcome of one orchestrator candidate attempt
//   - ImportEvent: final result of one import invocation
package events
