package nodes

import (
	"errors"
	"slices"
	"strings"
)

// ElementId is the stable id of an element in a document
type ElementId int64

// InvalidElementId is the id of nothing
const InvalidElementId ElementId = -1

// CategoryId identifies a category
type CategoryId int64

// Category is a classification group for elements, such as walls or doors
type Category struct {
	Id   CategoryId
	Name string
}

// Element is an entity of the document graph.
// Elements returned by a Document are snapshots: changing one changes nothing in the document.
type Element struct {
	// Id of the element, unique in the document
	Id ElementId
	// Category of the element
	Category CategoryId
	// TypeId is the id of the element type, InvalidElementId if none
	TypeId ElementId
	// Class groups elements sharing a name space (View, Sheet, WallType...)
	Class string
	// Name of the element, unique per class when not empty
	Name string
	// parameters are the user parameters, in insertion order
	parameters []Parameter
	// builtIns are the parameters defined by the host
	builtIns []Parameter
	// typeParameters are the parameters of the element type
	typeParameters []Parameter
}

// NewElement returns an element with no parameter
func NewElement(id ElementId, category CategoryId, class, name string) Element {
	return Element{
		Id:       id,
		Category: category,
		TypeId:   InvalidElementId,
		Class:    class,
		Name:     name,
	}
}

// SetParameter inserts or replaces a parameter.
// Built-in parameters go with built-ins, others keep insertion order.
func (e *Element) SetParameter(p Parameter) error {
	if e == nil {
		return errors.New("nil element")
	} else if len(p.Name) == 0 {
		return errors.New("empty parameter name")
	}

	if p.BuiltIn {
		e.builtIns = upsertParameter(e.builtIns, p)
	} else {
		e.parameters = upsertParameter(e.parameters, p)
	}

	return nil
}

// SetTypeParameters sets the parameters of the element type, as seen from this element
func (e *Element) SetTypeParameters(parameters []Parameter) {
	if e == nil {
		return
	}

	e.typeParameters = slices.Clone(parameters)
}

// Parameter returns the user parameter with that name
func (e *Element) Parameter(name string) (Parameter, bool) {
	if e == nil {
		return Parameter{}, false
	}

	return findParameter(e.parameters, name)
}

// BuiltInParameter returns the built-in parameter with that name.
// Name is always available as a read only built-in.
func (e *Element) BuiltInParameter(name string) (Parameter, bool) {
	if e == nil {
		return Parameter{}, false
	} else if strings.EqualFold(name, BuiltInName) {
		return NewParameter(BuiltInName, NewStringValue(e.Name)).AsReadOnly().AsBuiltIn(), true
	}

	return findParameter(e.builtIns, name)
}

// TypeParameter returns the parameter of the element type with that name
func (e *Element) TypeParameter(name string) (Parameter, bool) {
	if e == nil {
		return Parameter{}, false
	}

	return findParameter(e.typeParameters, name)
}

// Parameters returns a copy of user parameters, in insertion order
func (e *Element) Parameters() []Parameter {
	if e == nil {
		return nil
	}

	return slices.Clone(e.parameters)
}

// BuiltInParameters returns a copy of built-in parameters
func (e *Element) BuiltInParameters() []Parameter {
	if e == nil {
		return nil
	}

	return slices.Clone(e.builtIns)
}

// TypeParameters returns a copy of type parameters
func (e *Element) TypeParameters() []Parameter {
	if e == nil {
		return nil
	}

	return slices.Clone(e.typeParameters)
}

// Clone returns a deep copy of the element
func (e Element) Clone() Element {
	result := e
	result.parameters = slices.Clone(e.parameters)
	result.builtIns = slices.Clone(e.builtIns)
	result.typeParameters = slices.Clone(e.typeParameters)
	return result
}

// upsertParameter replaces parameter with the same name, or appends it
func upsertParameter(parameters []Parameter, p Parameter) []Parameter {
	index := slices.IndexFunc(parameters, func(current Parameter) bool { return current.Name == p.Name })
	if index < 0 {
		return append(parameters, p)
	}

	parameters[index] = p
	return parameters
}

// findParameter looks for an exact name first, then a case insensitive match
func findParameter(parameters []Parameter, name string) (Parameter, bool) {
	for _, p := range parameters {
		if p.Name == name {
			return p, true
		}
	}

	for _, p := range parameters {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}

	return Parameter{}, false
}
