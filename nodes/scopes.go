package nodes

import "slices"

// ScopeKind is the kind of element set a query works on
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeView
	ScopeCategory
	ScopeExplicit
	ScopeIntersection
)

// Scope defines a set of elements in a document.
// Scopes are values, they are resolved by the document when queried.
type Scope struct {
	kind     ScopeKind
	view     ElementId
	category CategoryId
	ids      []ElementId
	parts    []Scope
}

// AllElements is the scope of every element in the document
func AllElements() Scope {
	return Scope{kind: ScopeAll}
}

// ElementsInView is the scope of elements visible in a view
func ElementsInView(view ElementId) Scope {
	return Scope{kind: ScopeView, view: view}
}

// ElementsInCategory is the scope of elements of a category
func ElementsInCategory(category CategoryId) Scope {
	return Scope{kind: ScopeCategory, category: category}
}

// ExplicitSet is the scope of given ids
func ExplicitSet(ids ...ElementId) Scope {
	return Scope{kind: ScopeExplicit, ids: slices.Clone(ids)}
}

// Intersect is the scope of elements in all parts.
// Intersect with no part is AllElements.
func Intersect(parts ...Scope) Scope {
	if len(parts) == 0 {
		return AllElements()
	} else if len(parts) == 1 {
		return parts[0]
	}

	return Scope{kind: ScopeIntersection, parts: slices.Clone(parts)}
}

// Kind returns the kind of scope
func (s Scope) Kind() ScopeKind {
	return s.kind
}

// View returns the view of a view scope
func (s Scope) View() ElementId {
	return s.view
}

// Category returns the category of a category scope
func (s Scope) Category() CategoryId {
	return s.category
}

// Ids returns a copy of the ids of an explicit scope
func (s Scope) Ids() []ElementId {
	return slices.Clone(s.ids)
}

// Parts returns a copy of the parts of an intersection
func (s Scope) Parts() []Scope {
	return slices.Clone(s.parts)
}

// Admits returns false if element is provably outside the scope.
// View membership depends on the document, so view scopes admit anything.
func (s Scope) Admits(e Element) bool {
	switch s.kind {
	case ScopeCategory:
		return e.Category == s.category
	case ScopeExplicit:
		return slices.Contains(s.ids, e.Id)
	case ScopeIntersection:
		for _, part := range s.parts {
			if !part.Admits(e) {
				return false
			}
		}

		return true
	default:
		return true
	}
}
