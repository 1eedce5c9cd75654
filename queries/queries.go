package queries

import (
	"errors"
	"iter"
	"slices"

	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

// Matches is the lazy result of a query.
// It is not a snapshot: each iteration resolves the scope again and reads
// each element right before testing it, so writes made while iterating are visible.
type Matches struct {
	// source is the document to read
	source nodes.ElementSource
	// scope of the query
	scope nodes.Scope
	// predicate to match
	predicate predicates.Predicate
	// evaluator holds the parameter resolvers
	evaluator predicates.Evaluator
}

// Query returns elements of scope matching predicate, by ascending id
func Query(source nodes.ElementSource, scope nodes.Scope, predicate predicates.Predicate) Matches {
	return QueryWith(predicates.NewEvaluator(), source, scope, predicate)
}

// QueryWith is Query with a specific evaluator
func QueryWith(evaluator predicates.Evaluator, source nodes.ElementSource, scope nodes.Scope, predicate predicates.Predicate) Matches {
	return Matches{
		source:    source,
		scope:     scope,
		predicate: predicate,
		evaluator: evaluator,
	}
}

// Scope returns the scope of the query
func (m Matches) Scope() nodes.Scope {
	return m.scope
}

// Predicate returns the predicate of the query
func (m Matches) Predicate() predicates.Predicate {
	return m.predicate
}

// candidates returns the sorted distinct ids of the scope
func (m Matches) candidates() ([]nodes.ElementId, error) {
	if m.source == nil {
		return nil, errors.New("nil document")
	}

	ids, err := m.source.ElementIds(m.scope)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// All yields matching elements by ascending id.
// A scope that cannot be resolved yields a single error and stops.
// Stopping the iteration early is the only way to cancel a query.
func (m Matches) All() iter.Seq2[nodes.Element, error] {
	return func(yield func(nodes.Element, error) bool) {
		ids, err := m.candidates()
		if err != nil {
			yield(nodes.Element{}, err)
			return
		}

		for _, id := range ids {
			// element may have been deleted since scope resolution
			element, found := m.source.Element(id)
			if !found || !m.scope.Admits(element) {
				continue
			} else if !m.evaluator.Evaluate(m.predicate, element) {
				continue
			} else if !yield(element, nil) {
				return
			}
		}
	}
}

// Collect returns all matching elements
func (m Matches) Collect() ([]nodes.Element, error) {
	var result []nodes.Element
	for element, err := range m.All() {
		if err != nil {
			return nil, err
		}

		result = append(result, element)
	}

	return result, nil
}

// Ids returns the ids of matching elements
func (m Matches) Ids() ([]nodes.ElementId, error) {
	var result []nodes.ElementId
	for element, err := range m.All() {
		if err != nil {
			return nil, err
		}

		result = append(result, element.Id)
	}

	return result, nil
}

// Count returns the number of matching elements
func (m Matches) Count() (int, error) {
	count := 0
	for _, err := range m.All() {
		if err != nil {
			return 0, err
		}

		count++
	}

	return count, nil
}

// First returns the matching element with the smallest id
func (m Matches) First() (nodes.Element, bool, error) {
	for element, err := range m.All() {
		return element, err == nil, err
	}

	return nodes.Element{}, false, nil
}
