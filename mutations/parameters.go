package mutations

import (
	"fmt"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// SetParameter sets the value of a parameter
type SetParameter struct {
	// Parameter is the name of the parameter to set
	Parameter string
	// Value to set, with the storage kind of the parameter
	Value nodes.Value
	// OnlyIfEmpty skips parameters that already have a non blank value
	OnlyIfEmpty bool
}

// SetParameterIfEmpty sets the parameter only when it has no value or a blank one
func SetParameterIfEmpty(parameter string, value nodes.Value) SetParameter {
	return SetParameter{Parameter: parameter, Value: value, OnlyIfEmpty: true}
}

// Name describes the mutation
func (s SetParameter) Name() string {
	if s.OnlyIfEmpty {
		return fmt.Sprintf("set %s if empty", s.Parameter)
	}

	return "set " + s.Parameter
}

// Apply sets the parameter of element. Same value is a no op
func (s SetParameter) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	}

	current, found := doc.GetParameter(element.Id, s.Parameter)
	switch {
	case !found:
		return nodes.FailedOutcome(element.Id, fmt.Errorf("parameter %q: %w", s.Parameter, nodes.ErrNotFound))
	case current.ReadOnly:
		return nodes.FailedOutcome(element.Id, fmt.Errorf("parameter %q: %w", s.Parameter, nodes.ErrReadOnly))
	case current.Kind != s.Value.Kind():
		return nodes.FailedOutcome(element.Id, fmt.Errorf("parameter %q stores %s, not %s: %w", s.Parameter, current.Kind, s.Value.Kind(), nodes.ErrInvalid))
	case s.OnlyIfEmpty && !current.IsEmpty():
		return nodes.SkippedOutcome(element.Id, fmt.Sprintf("%s already set", s.Parameter))
	case current.HasValue && current.Value.Equals(s.Value):
		return nodes.SkippedOutcome(element.Id, fmt.Sprintf("%s already %q", s.Parameter, s.Value.String()))
	}

	if err := doc.SetParameter(element.Id, s.Parameter, s.Value); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	}

	return nodes.AppliedOutcome(element.Id, fmt.Sprintf("%s set to %q", s.Parameter, s.Value.String()))
}

// SetParameterFrom sets a text parameter to the value source computes for each element
type SetParameterFrom struct {
	// Parameter is the name of the text parameter to set
	Parameter string
	// Source computes the value, Sequential numbers elements
	Source NameFunc
	// OnlyIfEmpty skips parameters that already have a non blank value
	OnlyIfEmpty bool
}

// Name describes the mutation
func (s SetParameterFrom) Name() string {
	return SetParameter{Parameter: s.Parameter, OnlyIfEmpty: s.OnlyIfEmpty}.Name()
}

// Apply computes the value for element then sets it
func (s SetParameterFrom) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if s.Source == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no value function: %w", nodes.ErrInvalid))
	} else if value, err := s.Source(element); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	} else {
		return SetParameter{Parameter: s.Parameter, Value: nodes.NewStringValue(value), OnlyIfEmpty: s.OnlyIfEmpty}.Apply(doc, element)
	}
}
