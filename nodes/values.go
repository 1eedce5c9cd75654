package nodes

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultEpsilon absorbs floating point noise from unit converted quantities
const DefaultEpsilon = 1e-6

// StorageKind is the storage type of a parameter
type StorageKind int

const (
	// StorageNone is the kind of a missing value
	StorageNone StorageKind = iota
	StorageString
	StorageDouble
	StorageInteger
	StorageElementRef
)

// String returns the name of the kind, as used in snapshots
func (k StorageKind) String() string {
	switch k {
	case StorageString:
		return "string"
	case StorageDouble:
		return "double"
	case StorageInteger:
		return "integer"
	case StorageElementRef:
		return "element"
	default:
		return "none"
	}
}

// ParseStorageKind is the reverse of String. Matching is case insensitive
func ParseStorageKind(value string) (StorageKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "string", "text":
		return StorageString, nil
	case "double", "float", "number":
		return StorageDouble, nil
	case "integer", "int":
		return StorageInteger, nil
	case "element", "elementid", "ref":
		return StorageElementRef, nil
	case "", "none":
		return StorageNone, nil
	}

	return StorageNone, fmt.Errorf("unknown storage kind %q: %w", value, ErrInvalid)
}

// Value is a typed parameter value.
// Only the field matching its kind is significant.
type Value struct {
	kind    StorageKind
	text    string
	number  float64
	integer int64
	ref     ElementId
}

// NewStringValue returns a string value
func NewStringValue(s string) Value {
	return Value{kind: StorageString, text: s}
}

// NewDoubleValue returns a double value
func NewDoubleValue(d float64) Value {
	return Value{kind: StorageDouble, number: d}
}

// NewIntegerValue returns an integer value
func NewIntegerValue(i int64) Value {
	return Value{kind: StorageInteger, integer: i}
}

// NewElementRefValue returns a reference to another element
func NewElementRefValue(id ElementId) Value {
	return Value{kind: StorageElementRef, ref: id}
}

// Kind returns the storage kind of the value
func (v Value) Kind() StorageKind {
	return v.kind
}

// AsString returns the string content and true if value is a string
func (v Value) AsString() (string, bool) {
	return v.text, v.kind == StorageString
}

// AsDouble returns a numeric value for double and integer kinds
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case StorageDouble:
		return v.number, true
	case StorageInteger:
		return float64(v.integer), true
	default:
		return 0, false
	}
}

// AsInteger returns the integer content and true if value is an integer
func (v Value) AsInteger() (int64, bool) {
	return v.integer, v.kind == StorageInteger
}

// AsElementId returns the referenced id and true if value is a reference
func (v Value) AsElementId() (ElementId, bool) {
	return v.ref, v.kind == StorageElementRef
}

// Equals returns true for same kinds and same content.
// Doubles are equal within DefaultEpsilon.
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case StorageString:
		return v.text == other.text
	case StorageDouble:
		return math.Abs(v.number-other.number) <= DefaultEpsilon
	case StorageInteger:
		return v.integer == other.integer
	case StorageElementRef:
		return v.ref == other.ref
	default:
		return true
	}
}

// String formats the value for reports
func (v Value) String() string {
	switch v.kind {
	case StorageString:
		return v.text
	case StorageDouble:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case StorageInteger:
		return strconv.FormatInt(v.integer, 10)
	case StorageElementRef:
		return strconv.FormatInt(int64(v.ref), 10)
	default:
		return ""
	}
}

// ParseValue reads raw as a value of given kind
func ParseValue(kind StorageKind, raw string) (Value, error) {
	switch kind {
	case StorageString:
		return NewStringValue(raw), nil
	case StorageDouble:
		if d, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			return Value{}, fmt.Errorf("%q is not a double: %w", raw, ErrInvalid)
		} else {
			return NewDoubleValue(d), nil
		}
	case StorageInteger:
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
			return Value{}, fmt.Errorf("%q is not an integer: %w", raw, ErrInvalid)
		} else {
			return NewIntegerValue(i), nil
		}
	case StorageElementRef:
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
			return Value{}, fmt.Errorf("%q is not an element id: %w", raw, ErrInvalid)
		} else {
			return NewElementRefValue(ElementId(i)), nil
		}
	default:
		return Value{}, fmt.Errorf("no value for kind %s: %w", kind, ErrInvalid)
	}
}
