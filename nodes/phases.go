package nodes

import (
	"slices"
	"strings"
)

// PhaseStatus is the lifecycle relationship of an element to a phase
type PhaseStatus int

const (
	PhaseNew PhaseStatus = iota
	PhaseExisting
	PhaseDemolished
	PhaseTemporary
)

// String returns the name of the status
func (s PhaseStatus) String() string {
	switch s {
	case PhaseNew:
		return "New"
	case PhaseExisting:
		return "Existing"
	case PhaseDemolished:
		return "Demolished"
	case PhaseTemporary:
		return "Temporary"
	default:
		return "Unknown"
	}
}

// ParsePhaseStatus returns the status for its name, case insensitive
func ParsePhaseStatus(name string) (PhaseStatus, bool) {
	for _, status := range []PhaseStatus{PhaseNew, PhaseExisting, PhaseDemolished, PhaseTemporary} {
		if strings.EqualFold(status.String(), name) {
			return status, true
		}
	}

	return PhaseNew, false
}

// Phase is a named step of the project lifecycle
type Phase struct {
	Id       ElementId
	Name     string
	Sequence int
}

// PhaseSequence is the ordered list of the phases of a document
type PhaseSequence struct {
	phases []Phase
}

// NewPhaseSequence sorts phases by sequence number
func NewPhaseSequence(phases []Phase) PhaseSequence {
	values := slices.Clone(phases)
	slices.SortStableFunc(values, func(a, b Phase) int { return a.Sequence - b.Sequence })
	return PhaseSequence{phases: values}
}

// Phases returns the phases in order
func (s PhaseSequence) Phases() []Phase {
	return slices.Clone(s.phases)
}

// Position returns the index of the phase in the sequence, -1 if not found
func (s PhaseSequence) Position(id ElementId) int {
	return slices.IndexFunc(s.phases, func(p Phase) bool { return p.Id == id })
}

// FindByName returns the phase with that name
func (s PhaseSequence) FindByName(name string) (Phase, bool) {
	for _, phase := range s.phases {
		if phase.Name == name {
			return phase, true
		}
	}

	return Phase{}, false
}
