package graphs

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

const (
	// ViewClass is the class of view elements
	ViewClass = "View"
	// FilterClass is the class of filter elements
	FilterClass = "ParameterFilter"
	// ViewCategory is the category of view elements
	ViewCategory nodes.CategoryId = -2000279
	// FilterCategory is the category of filter elements
	FilterCategory nodes.CategoryId = -2000700
)

// overrideKey links a view to an element, a category or a filter
type overrideKey struct {
	view   nodes.ElementId
	target int64
}

// FilterRecord is what the document knows about a filter: its name and categories.
// The predicate of a filter is owned by the filters package.
type FilterRecord struct {
	Id         nodes.ElementId
	Name       string
	Categories []nodes.CategoryId
}

// Document is an in memory host document.
// It is not safe for concurrent use.
type Document struct {
	// Id is the id of the document
	Id string
	// Name of the document, for reports
	Name string
	// categories by id
	categories map[nodes.CategoryId]nodes.Category
	// elements by id, views and filters included
	elements map[nodes.ElementId]nodes.Element
	// views by id
	views map[nodes.ElementId]nodes.View
	// viewMembers are elements visible in a view. No entry means all model elements
	viewMembers map[nodes.ElementId][]nodes.ElementId
	// viewFilters are the ordered filters of a view
	viewFilters map[nodes.ElementId][]nodes.ElementId
	// unreadable contains views whose filters cannot be read
	unreadable map[nodes.ElementId]bool
	// filters by id
	filters map[nodes.ElementId]FilterRecord
	// filterable parameters per category, lower case names
	filterable map[nodes.CategoryId]map[string]bool
	// overrides per view and element, category or filter
	elementOverrides  map[overrideKey]nodes.OverrideSettings
	categoryOverrides map[overrideKey]nodes.OverrideSettings
	filterOverrides   map[overrideKey]nodes.OverrideSettings
	// phases of the document
	phases nodes.PhaseSequence
	// dirtyElements contain the elements that were changed since load
	dirtyElements []nodes.ElementId
}

// NewEmptyDocument returns a new empty document with a random id
func NewEmptyDocument() *Document {
	return NewDocumentWithId(uuid.NewString(), "")
}

// NewDocumentWithId builds a new empty document with a given id and name
func NewDocumentWithId(id, name string) *Document {
	return &Document{
		Id:                id,
		Name:              name,
		categories:        make(map[nodes.CategoryId]nodes.Category),
		elements:          make(map[nodes.ElementId]nodes.Element),
		views:             make(map[nodes.ElementId]nodes.View),
		viewMembers:       make(map[nodes.ElementId][]nodes.ElementId),
		viewFilters:       make(map[nodes.ElementId][]nodes.ElementId),
		unreadable:        make(map[nodes.ElementId]bool),
		filters:           make(map[nodes.ElementId]FilterRecord),
		filterable:        make(map[nodes.CategoryId]map[string]bool),
		elementOverrides:  make(map[overrideKey]nodes.OverrideSettings),
		categoryOverrides: make(map[overrideKey]nodes.OverrideSettings),
		filterOverrides:   make(map[overrideKey]nodes.OverrideSettings),
	}
}

///////////////////////////////////////////////
// BUILDING THE DOCUMENT
///////////////////////////////////////////////

// AddCategory adds or replaces a category
func (d *Document) AddCategory(category nodes.Category) error {
	if d == nil {
		return errors.New("nil document")
	}

	d.categories[category.Id] = category
	return nil
}

// AddElement adds a new element. Ids are unique in the document
func (d *Document) AddElement(element nodes.Element) error {
	if d == nil {
		return errors.New("nil document")
	} else if element.Id == nodes.InvalidElementId {
		return fmt.Errorf("invalid element id: %w", nodes.ErrInvalid)
	} else if _, found := d.elements[element.Id]; found {
		return fmt.Errorf("element %d already exists: %w", element.Id, nodes.ErrCollision)
	}

	d.elements[element.Id] = element.Clone()
	return nil
}

// AddView adds a view, as a view and as an element of class View
func (d *Document) AddView(view nodes.View) error {
	if d == nil {
		return errors.New("nil document")
	}

	element := nodes.NewElement(view.Id, ViewCategory, ViewClass, view.Name)
	if err := d.AddElement(element); err != nil {
		return err
	}

	d.views[view.Id] = view
	return nil
}

// SetViewMembers sets the elements visible in a view
func (d *Document) SetViewMembers(view nodes.ElementId, members []nodes.ElementId) error {
	if d == nil {
		return errors.New("nil document")
	} else if _, found := d.views[view]; !found {
		return fmt.Errorf("view %d: %w", view, nodes.ErrNotFound)
	}

	d.viewMembers[view] = slices.Clone(members)
	return nil
}

// MarkViewFiltersUnreadable simulates a view whose filters the host cannot return
func (d *Document) MarkViewFiltersUnreadable(view nodes.ElementId) {
	if d != nil {
		d.unreadable[view] = true
	}
}

// AddFilter registers a filter. Filter names are unique in the document
func (d *Document) AddFilter(record FilterRecord) error {
	if d == nil {
		return errors.New("nil document")
	} else if len(record.Name) == 0 {
		return fmt.Errorf("empty filter name: %w", nodes.ErrInvalid)
	} else if d.NameTaken(FilterClass, record.Name, record.Id) {
		return fmt.Errorf("filter %q: %w", record.Name, nodes.ErrCollision)
	}

	element := nodes.NewElement(record.Id, FilterCategory, FilterClass, record.Name)
	if err := d.AddElement(element); err != nil {
		return err
	}

	record.Categories = slices.Clone(record.Categories)
	d.filters[record.Id] = record
	return nil
}

// FilterCategories returns the current categories of a filter
func (d *Document) FilterCategories(filter nodes.ElementId) ([]nodes.CategoryId, bool) {
	if record, found := d.Filter(filter); !found {
		return nil, false
	} else {
		return record.Categories, true
	}
}

// SetFilterCategories changes the categories of a filter.
// Attached filters are not checked again, attaching them elsewhere will.
func (d *Document) SetFilterCategories(filter nodes.ElementId, categories []nodes.CategoryId) error {
	if d == nil {
		return errors.New("nil document")
	}

	record, found := d.filters[filter]
	if !found {
		return fmt.Errorf("filter %d: %w", filter, nodes.ErrNotFound)
	} else if len(categories) == 0 {
		return fmt.Errorf("filter %q has no category: %w", record.Name, nodes.ErrInvalid)
	}

	record.Categories = slices.Clone(categories)
	d.filters[filter] = record
	return d.MarkExistingElementAsDirty(filter)
}

// SetFilterableParameters declares the filterable parameters of a category.
// Without declaration, parameters found on elements of the category are filterable.
func (d *Document) SetFilterableParameters(category nodes.CategoryId, names ...string) {
	if d == nil {
		return
	}

	values := make(map[string]bool)
	for _, name := range names {
		values[strings.ToLower(name)] = true
	}

	d.filterable[category] = values
}

// SetPhases sets the phases of the document
func (d *Document) SetPhases(phases []nodes.Phase) {
	if d != nil {
		d.phases = nodes.NewPhaseSequence(phases)
	}
}

// ApplyTemplate links view to template.
// When locked, the template controls overrides and filters of the view.
func (d *Document) ApplyTemplate(view, template nodes.ElementId, locked bool) error {
	if d == nil {
		return errors.New("nil document")
	}

	current, found := d.views[view]
	if !found {
		return fmt.Errorf("view %d: %w", view, nodes.ErrNotFound)
	} else if source, found := d.views[template]; !found {
		return fmt.Errorf("template %d: %w", template, nodes.ErrNotFound)
	} else if !source.IsTemplate {
		return fmt.Errorf("view %q is not a template: %w", source.Name, nodes.ErrInvalid)
	} else if current.IsTemplate {
		return fmt.Errorf("template %q cannot use a template: %w", current.Name, nodes.ErrInvalid)
	}

	current.TemplateId = template
	current.LockedByTemplate = locked
	d.views[view] = current
	return nil
}

// ViewByName returns the view with that name, templates included
func (d *Document) ViewByName(name string) (nodes.View, bool) {
	for _, id := range d.ViewIds() {
		if view := d.views[id]; view.Name == name {
			return view, true
		}
	}

	return nodes.View{}, false
}

// Filter returns the record of a filter
func (d *Document) Filter(id nodes.ElementId) (FilterRecord, bool) {
	if d == nil {
		return FilterRecord{}, false
	}

	record, found := d.filters[id]
	if found {
		record.Categories = slices.Clone(record.Categories)
	}

	return record, found
}

// FilterByName returns the record of the filter with that name
func (d *Document) FilterByName(name string) (FilterRecord, bool) {
	if d == nil {
		return FilterRecord{}, false
	}

	for _, id := range d.FilterIds() {
		if record := d.filters[id]; record.Name == name {
			return d.Filter(id)
		}
	}

	return FilterRecord{}, false
}

// Categories returns the categories sorted by id
func (d *Document) Categories() []nodes.Category {
	if d == nil {
		return nil
	}

	result := slices.Collect(maps.Values(d.categories))
	slices.SortFunc(result, func(a, b nodes.Category) int { return cmp.Compare(a.Id, b.Id) })
	return result
}

// CategoryByName returns the category with that name, case insensitive
func (d *Document) CategoryByName(name string) (nodes.Category, bool) {
	for _, category := range d.Categories() {
		if strings.EqualFold(category.Name, name) {
			return category, true
		}
	}

	return nodes.Category{}, false
}

///////////////////////////////////////////////
// DIRTY TRACKING
///////////////////////////////////////////////

// MarkExistingElementAsDirty flags an element as changed since load
func (d *Document) MarkExistingElementAsDirty(id nodes.ElementId) error {
	if d == nil {
		return errors.New("nil document")
	} else if _, found := d.elements[id]; !found {
		return fmt.Errorf("element %d: %w", id, nodes.ErrNotFound)
	} else if !slices.Contains(d.dirtyElements, id) {
		d.dirtyElements = append(d.dirtyElements, id)
	}

	return nil
}

// DirtyElements returns the sorted ids of changed elements, never nil
func (d *Document) DirtyElements() []nodes.ElementId {
	if d == nil || len(d.dirtyElements) == 0 {
		return []nodes.ElementId{}
	}

	result := slices.Clone(d.dirtyElements)
	slices.Sort(result)
	return result
}

// ClearDirtyElements forgets changes, once saved
func (d *Document) ClearDirtyElements() {
	if d != nil {
		d.dirtyElements = nil
	}
}

///////////////////////////////////////////////
// nodes.Document IMPLEMENTATION
///////////////////////////////////////////////

// ElementIds resolves the scope.
// Intersections are resolved from their most selective part.
func (d *Document) ElementIds(scope nodes.Scope) ([]nodes.ElementId, error) {
	if d == nil {
		return nil, errors.New("nil document")
	}

	switch scope.Kind() {
	case nodes.ScopeAll:
		return slices.Collect(maps.Keys(d.elements)), nil
	case nodes.ScopeCategory:
		var result []nodes.ElementId
		for id, element := range d.elements {
			if element.Category == scope.Category() {
				result = append(result, id)
			}
		}

		return result, nil
	case nodes.ScopeExplicit:
		var result []nodes.ElementId
		for _, id := range scope.Ids() {
			if _, found := d.elements[id]; found {
				result = append(result, id)
			}
		}

		return result, nil
	case nodes.ScopeView:
		return d.viewElementIds(scope.View())
	case nodes.ScopeIntersection:
		return d.intersectionIds(scope.Parts())
	default:
		return nil, fmt.Errorf("unsupported scope %d: %w", scope.Kind(), nodes.ErrInvalid)
	}
}

// viewElementIds returns members of a view, or all model elements
func (d *Document) viewElementIds(view nodes.ElementId) ([]nodes.ElementId, error) {
	if _, found := d.views[view]; !found {
		return nil, fmt.Errorf("view %d: %w", view, nodes.ErrNotFound)
	}

	if members, found := d.viewMembers[view]; found {
		return slices.Clone(members), nil
	}

	var result []nodes.ElementId
	for id, element := range d.elements {
		if element.Class != ViewClass && element.Class != FilterClass {
			result = append(result, id)
		}
	}

	return result, nil
}

// intersectionIds resolves each part and keeps common ids
func (d *Document) intersectionIds(parts []nodes.Scope) ([]nodes.ElementId, error) {
	var current map[nodes.ElementId]bool
	for _, part := range parts {
		ids, err := d.ElementIds(part)
		if err != nil {
			return nil, err
		}

		next := make(map[nodes.ElementId]bool, len(ids))
		for _, id := range ids {
			if current == nil || current[id] {
				next[id] = true
			}
		}

		current = next
	}

	return slices.Collect(maps.Keys(current)), nil
}

// Element returns a snapshot, with the parameters of its type
func (d *Document) Element(id nodes.ElementId) (nodes.Element, bool) {
	if d == nil {
		return nodes.Element{}, false
	}

	element, found := d.elements[id]
	if !found {
		return nodes.Element{}, false
	}

	result := element.Clone()
	if typeElement, hasType := d.elements[element.TypeId]; hasType && element.TypeId != nodes.InvalidElementId {
		result.SetTypeParameters(typeElement.Parameters())
	}

	return result, true
}

// Category returns the category with that id
func (d *Document) Category(id nodes.CategoryId) (nodes.Category, bool) {
	if d == nil {
		return nodes.Category{}, false
	}

	category, found := d.categories[id]
	return category, found
}

// Phases returns the phases of the document
func (d *Document) Phases() nodes.PhaseSequence {
	if d == nil {
		return nodes.PhaseSequence{}
	}

	return d.phases
}

// GetParameter resolves a parameter the way predicates do
func (d *Document) GetParameter(id nodes.ElementId, name string) (nodes.Parameter, bool) {
	element, found := d.Element(id)
	if !found {
		return nodes.Parameter{}, false
	}

	return predicates.Resolve(predicates.DefaultResolvers(), element, name)
}

// SetParameter changes a built-in or instance parameter.
// Type parameters are read only from instances.
func (d *Document) SetParameter(id nodes.ElementId, name string, value nodes.Value) error {
	if d == nil {
		return errors.New("nil document")
	}

	element, found := d.elements[id]
	if !found {
		return fmt.Errorf("element %d: %w", id, nodes.ErrNotFound)
	}

	current, found := d.GetParameter(id, name)
	switch {
	case !found:
		return fmt.Errorf("parameter %q on element %d: %w", name, id, nodes.ErrNotFound)
	case current.ReadOnly:
		return fmt.Errorf("parameter %q on element %d: %w", name, id, nodes.ErrReadOnly)
	case current.Kind != value.Kind():
		return fmt.Errorf("parameter %q expects %s, got %s: %w", name, current.Kind, value.Kind(), nodes.ErrInvalid)
	}

	_, isBuiltIn := element.BuiltInParameter(name)
	_, isInstance := element.Parameter(name)
	if !isBuiltIn && !isInstance {
		return fmt.Errorf("parameter %q is a type parameter: %w", name, nodes.ErrReadOnly)
	}

	updated := current
	updated.Value = value
	updated.HasValue = true
	if err := element.SetParameter(updated); err != nil {
		return err
	}

	d.elements[id] = element
	return d.MarkExistingElementAsDirty(id)
}

// NameTaken returns true if another element of the same class uses that name
func (d *Document) NameTaken(class, name string, except nodes.ElementId) bool {
	if d == nil {
		return false
	}

	for id, element := range d.elements {
		if id != except && element.Class == class && element.Name == name {
			return true
		}
	}

	return false
}

// Rename changes the name of an element, and of the matching view or filter
func (d *Document) Rename(id nodes.ElementId, name string) error {
	if d == nil {
		return errors.New("nil document")
	}

	element, found := d.elements[id]
	if !found {
		return fmt.Errorf("element %d: %w", id, nodes.ErrNotFound)
	} else if len(name) == 0 {
		return fmt.Errorf("empty name for element %d: %w", id, nodes.ErrInvalid)
	} else if d.NameTaken(element.Class, name, id) {
		return fmt.Errorf("name %q: %w", name, nodes.ErrCollision)
	}

	element.Name = name
	d.elements[id] = element
	if view, isView := d.views[id]; isView {
		view.Name = name
		d.views[id] = view
	}

	if record, isFilter := d.filters[id]; isFilter {
		record.Name = name
		d.filters[id] = record
	}

	return d.MarkExistingElementAsDirty(id)
}

// View returns the view with that id
func (d *Document) View(id nodes.ElementId) (nodes.View, bool) {
	if d == nil {
		return nodes.View{}, false
	}

	view, found := d.views[id]
	return view, found
}

// ViewIds returns the sorted ids of views and templates
func (d *Document) ViewIds() []nodes.ElementId {
	if d == nil {
		return nil
	}

	result := slices.Collect(maps.Keys(d.views))
	slices.Sort(result)
	return result
}

// FilterIds returns the sorted ids of filters
func (d *Document) FilterIds() []nodes.ElementId {
	if d == nil {
		return nil
	}

	result := slices.Collect(maps.Keys(d.filters))
	slices.Sort(result)
	return result
}
