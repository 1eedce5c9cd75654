package predicates

import (
	"fmt"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

type phaseStatus struct {
	phases nodes.PhaseSequence
	phase  nodes.ElementId
	status nodes.PhaseStatus
}

// PhaseStatus matches elements whose status relative to phase is status.
// Phases define the order to decide what happened before phase.
func PhaseStatus(phases nodes.PhaseSequence, phase nodes.ElementId, status nodes.PhaseStatus) Predicate {
	return phaseStatus{phases: phases, phase: phase, status: status}
}

func (p phaseStatus) String() string {
	return fmt.Sprintf("phase %d is %s", p.phase, p.status)
}

func (p phaseStatus) parameters(names []string) []string {
	return append(names, nodes.BuiltInPhaseCreated, nodes.BuiltInPhaseDemolished)
}

func (p phaseStatus) evaluate(resolvers []ParameterResolver, e nodes.Element) bool {
	target := p.phases.Position(p.phase)
	if target < 0 {
		return false
	}

	created, hasCreated := phaseReference(resolvers, e, nodes.BuiltInPhaseCreated)
	if !hasCreated {
		return false
	}

	createdPosition := p.phases.Position(created)
	if createdPosition < 0 {
		return false
	}

	demolishedPosition := -1
	if demolished, hasDemolished := phaseReference(resolvers, e, nodes.BuiltInPhaseDemolished); hasDemolished {
		demolishedPosition = p.phases.Position(demolished)
	}

	isDemolished := demolishedPosition >= 0
	switch p.status {
	case nodes.PhaseNew:
		return createdPosition == target && demolishedPosition != target
	case nodes.PhaseTemporary:
		return createdPosition == target && demolishedPosition == target
	case nodes.PhaseDemolished:
		return createdPosition < target && demolishedPosition == target
	case nodes.PhaseExisting:
		return createdPosition < target && (!isDemolished || demolishedPosition > target)
	default:
		return false
	}
}

// phaseReference reads a phase id from an element reference parameter
func phaseReference(resolvers []ParameterResolver, e nodes.Element, name string) (nodes.ElementId, bool) {
	parameter, found := Resolve(resolvers, e, name)
	if !found || !parameter.HasValue {
		return nodes.InvalidElementId, false
	}

	id, isRef := parameter.Value.AsElementId()
	if !isRef || id == nodes.InvalidElementId {
		return nodes.InvalidElementId, false
	}

	return id, true
}
