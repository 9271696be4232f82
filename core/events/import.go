package events

// ImportEvent is emitted when an import invocation finishes.
// Mode is "grid" or "llm".
type ImportEvent struct {
	ID      string
	Mode    string
	Success bool
	Days    int
	Periods int
	Err     error
}
