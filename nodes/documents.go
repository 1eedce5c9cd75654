package nodes

// ElementSource resolves scopes and reads element snapshots
type ElementSource interface {
	// ElementIds returns the ids in scope, in no particular order.
	// It returns ErrNotFound when the scope refers to a missing view.
	ElementIds(scope Scope) ([]ElementId, error)
	// Element returns a snapshot of the element with that id
	Element(id ElementId) (Element, bool)
}

// ParameterStore reads and writes element parameters
type ParameterStore interface {
	// GetParameter returns the parameter of an element, resolved as the predicates do
	GetParameter(element ElementId, name string) (Parameter, bool)
	// SetParameter changes the value of a parameter.
	// It fails with ErrNotFound, ErrReadOnly or ErrInvalid (storage kind mismatch).
	SetParameter(element ElementId, name string, value Value) error
}

// Namer deals with element names
type Namer interface {
	// NameTaken returns true if an element of the class, other than except, uses that name
	NameTaken(class, name string, except ElementId) bool
	// Rename sets the name of the element, ErrCollision if name is taken
	Rename(element ElementId, name string) error
}

// ViewSource reads views and view templates
type ViewSource interface {
	// View returns the view with that id
	View(id ElementId) (View, bool)
	// ViewIds returns the ids of all views, including templates
	ViewIds() []ElementId
}

// OverrideStore reads and writes graphic overrides in views
type OverrideStore interface {
	GetViewOverrides(view, element ElementId) (OverrideSettings, error)
	SetViewOverrides(view, element ElementId, settings OverrideSettings) error
	GetCategoryOverrides(view ElementId, category CategoryId) (OverrideSettings, error)
	SetCategoryOverrides(view ElementId, category CategoryId, settings OverrideSettings) error
	GetFilterOverrides(view, filter ElementId) (OverrideSettings, error)
	SetFilterOverrides(view, filter ElementId, settings OverrideSettings) error
}

// FilterStore deals with filters attached to views
type FilterStore interface {
	// FilterIds returns the ids of all filters in the document
	FilterIds() []ElementId
	// GetViewFilters returns the ordered filter ids of the view
	GetViewFilters(view ElementId) ([]ElementId, error)
	// AttachFilter appends filter to the view filters
	AttachFilter(view, filter ElementId) error
	// DetachFilter removes filter from the view filters
	DetachFilter(view, filter ElementId) error
	// IsParameterFilterable returns true if a filter on category may use that parameter
	IsParameterFilterable(category CategoryId, name string) bool
	// FilterCategories returns the categories of a filter, as the document currently sees them
	FilterCategories(filter ElementId) ([]CategoryId, bool)
}

// Document is the host document, as seen by the engine.
// Every core operation receives it explicitly, there is no global document.
type Document interface {
	ElementSource
	ParameterStore
	Namer
	ViewSource
	OverrideStore
	FilterStore

	// Category returns the category with that id
	Category(id CategoryId) (Category, bool)
	// Phases returns the ordered phases of the document
	Phases() PhaseSequence
}
