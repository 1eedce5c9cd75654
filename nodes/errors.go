package nodes

import "errors"

// Error taxonomy shared by every layer.
// Callers test errors with errors.Is, values are wrapped with more context.
var (
	// ErrNotFound means a named entity (element, view, phase, filter, parameter) is absent
	ErrNotFound = errors.New("not found")
	// ErrInvalid means a value has the wrong storage kind or a parameter is not filterable
	ErrInvalid = errors.New("invalid")
	// ErrReadOnly means the host refused to change a read only parameter
	ErrReadOnly = errors.New("read only")
	// ErrHostRejected means the host document refused a mutation
	ErrHostRejected = errors.New("rejected by host")
	// ErrCollision means a name is already used by another element
	ErrCollision = errors.New("name collision")
	// ErrIncompatibleCategories means a filter cannot target a category
	ErrIncompatibleCategories = errors.New("incompatible categories")
	// ErrAlreadyAttached means the filter is already part of the view
	ErrAlreadyAttached = errors.New("already attached")
	// ErrNilValue is returned for nil receivers or parameters
	ErrNilValue = errors.New("nil value")
)
