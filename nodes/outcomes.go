package nodes

import "fmt"

// Status is the result of one mutation on one element
type Status int

const (
	// Applied means the document changed
	Applied Status = iota
	// SkippedNoop means nothing had to change, it is not an error
	SkippedNoop
	// Failed means the mutation could not be applied to that element
	Failed
)

// String returns the name of the status
func (s Status) String() string {
	switch s {
	case Applied:
		return "Applied"
	case SkippedNoop:
		return "SkippedNoop"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of a mutation on one element
type Outcome struct {
	// Element is the id of the mutated element
	Element ElementId
	// Status of the mutation
	Status Status
	// Reason is set for failures, errors.Is works with the taxonomy errors
	Reason error
	// Detail is a human readable description of what happened
	Detail string
}

// AppliedOutcome returns an applied outcome
func AppliedOutcome(element ElementId, detail string) Outcome {
	return Outcome{Element: element, Status: Applied, Detail: detail}
}

// SkippedOutcome returns a no op outcome
func SkippedOutcome(element ElementId, detail string) Outcome {
	return Outcome{Element: element, Status: SkippedNoop, Detail: detail}
}

// FailedOutcome returns a failure for that reason
func FailedOutcome(element ElementId, reason error) Outcome {
	detail := ""
	if reason != nil {
		detail = reason.Error()
	}

	return Outcome{Element: element, Status: Failed, Reason: reason, Detail: detail}
}
