package nodes

import "strings"

// Names of built-in parameters.
// Built-in parameters are resolved before user parameters with the same name.
const (
	BuiltInName            = "Name"
	BuiltInMark            = "Mark"
	BuiltInComments        = "Comments"
	BuiltInPhaseCreated    = "Phase Created"
	BuiltInPhaseDemolished = "Phase Demolished"
)

// IsBuiltInName returns true for the names of built-in parameters (case insensitive)
func IsBuiltInName(name string) bool {
	for _, builtIn := range []string{BuiltInName, BuiltInMark, BuiltInComments, BuiltInPhaseCreated, BuiltInPhaseDemolished} {
		if strings.EqualFold(builtIn, name) {
			return true
		}
	}

	return false
}

// Parameter is a named, typed attribute of an element or of its type
type Parameter struct {
	// Name of the parameter, unique per element
	Name string
	// Kind is the storage kind, known even when there is no value
	Kind StorageKind
	// Value is significant only if HasValue is true
	Value Value
	// ReadOnly parameters may not be set
	ReadOnly bool
	// HasValue is false for parameters that exist with no value
	HasValue bool
	// BuiltIn is true for parameters defined by the host, not by users
	BuiltIn bool
}

// NewParameter returns a writable parameter with a value
func NewParameter(name string, value Value) Parameter {
	return Parameter{
		Name:     name,
		Kind:     value.Kind(),
		Value:    value,
		HasValue: value.Kind() != StorageNone,
	}
}

// NewEmptyParameter returns a writable parameter with no value
func NewEmptyParameter(name string, kind StorageKind) Parameter {
	return Parameter{
		Name:  name,
		Kind:  kind,
		Value: Value{kind: kind},
	}
}

// AsReadOnly returns a copy flagged as read only
func (p Parameter) AsReadOnly() Parameter {
	p.ReadOnly = true
	return p
}

// AsBuiltIn returns a copy flagged as built-in
func (p Parameter) AsBuiltIn() Parameter {
	p.BuiltIn = true
	return p
}

// IsEmpty returns true if parameter has no value, or an empty string value
func (p Parameter) IsEmpty() bool {
	if !p.HasValue {
		return true
	}

	text, isText := p.Value.AsString()
	return isText && len(strings.TrimSpace(text)) == 0
}
