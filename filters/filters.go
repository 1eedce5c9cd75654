package filters

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

// Filter is a named predicate scoped to categories, attachable to views
type Filter struct {
	// id of the filter element in the document
	id nodes.ElementId
	// name of the filter, unique in the document
	name string
	// categories the filter applies to
	categories []nodes.CategoryId
	// predicate elements must match
	predicate predicates.Predicate
}

// New builds a filter.
// Every parameter the predicate reads must be filterable for every category, otherwise it returns ErrInvalid.
func New(store nodes.FilterStore, id nodes.ElementId, name string, categories []nodes.CategoryId, predicate predicates.Predicate) (Filter, error) {
	var result Filter
	if store == nil {
		return result, fmt.Errorf("no document: %w", nodes.ErrNilValue)
	} else if len(name) == 0 {
		return result, fmt.Errorf("empty filter name: %w", nodes.ErrInvalid)
	} else if len(categories) == 0 {
		return result, fmt.Errorf("filter %q has no category: %w", name, nodes.ErrInvalid)
	} else if predicate == nil {
		return result, fmt.Errorf("filter %q has no predicate: %w", name, nodes.ErrInvalid)
	}

	result = Filter{
		id:         id,
		name:       name,
		categories: slices.Clone(categories),
		predicate:  predicate,
	}

	if err := result.Validate(store); err != nil {
		return Filter{}, errors.Join(err, nodes.ErrInvalid)
	}

	return result, nil
}

// Id returns the id of the filter element
func (f Filter) Id() nodes.ElementId {
	return f.id
}

// Name returns the name of the filter
func (f Filter) Name() string {
	return f.name
}

// Categories returns a copy of filter categories
func (f Filter) Categories() []nodes.CategoryId {
	return slices.Clone(f.categories)
}

// WithCategories returns a copy of the filter applying to categories
func (f Filter) WithCategories(categories []nodes.CategoryId) Filter {
	f.categories = slices.Clone(categories)
	return f
}

// Predicate returns the predicate of the filter
func (f Filter) Predicate() predicates.Predicate {
	return f.predicate
}

// Matches returns true for elements of the filter categories matching its predicate
func (f Filter) Matches(e nodes.Element) bool {
	return slices.Contains(f.categories, e.Category) && predicates.Evaluate(f.predicate, e)
}

// Validate checks parameters of the predicate are filterable for each category.
// It returns every violation, wrapped with ErrIncompatibleCategories
func (f Filter) Validate(store nodes.FilterStore) error {
	if store == nil {
		return fmt.Errorf("no document: %w", nodes.ErrNilValue)
	}

	var globalErr error
	parameters := predicates.ReferencedParameters(f.predicate)
	for _, category := range f.categories {
		for _, parameter := range parameters {
			if !store.IsParameterFilterable(category, parameter) {
				violation := fmt.Errorf("parameter %q is not filterable for category %d: %w", parameter, category, nodes.ErrIncompatibleCategories)
				globalErr = errors.Join(globalErr, violation)
			}
		}
	}

	return globalErr
}
