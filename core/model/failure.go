package model

// FailureKind identifies why a parse attempt was rejected.
type FailureKind int

const (
	FailureNotEnoughData FailureKind = iota
	FailureNoDayColumns
	FailureNoPeriodsFound
	FailureInvalidSchedule
)

// String returns a machine-friendly name for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNotEnoughData:
		return "NotEnoughData"
	case FailureNoDayColumns:
		return "NoDayColumns"
	case FailureNoPeriodsFound:
		return "NoPeriodsFound"
	case FailureInvalidSchedule:
		return "InvalidSchedule"
	default:
		return "unknown"
	}
}

// ParseFailure is a terminal, typed failure from the deterministic parser.
// The text is what it is: these are never retried.
type ParseFailure struct {
	Kind    FailureKind
	Message string
}

func (f *ParseFailure) Error() string {
	return f.Kind.String() + ": " + f.Message
}
