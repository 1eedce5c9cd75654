package graphs

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// writableView returns the view if it accepts overrides and filters changes
func (d *Document) writableView(id nodes.ElementId) (nodes.View, error) {
	if d == nil {
		return nodes.View{}, errors.New("nil document")
	}

	view, found := d.views[id]
	switch {
	case !found:
		return view, fmt.Errorf("view %d: %w", id, nodes.ErrNotFound)
	case !view.AllowsOverrides:
		return view, fmt.Errorf("view %q does not allow overrides: %w", view.Name, nodes.ErrHostRejected)
	case view.LockedByTemplate:
		return view, fmt.Errorf("view %q is controlled by template %d: %w", view.Name, view.TemplateId, nodes.ErrHostRejected)
	}

	return view, nil
}

// readOverrides returns the stored settings, or no override
func (d *Document) readOverrides(values map[overrideKey]nodes.OverrideSettings, view nodes.ElementId, target int64) (nodes.OverrideSettings, error) {
	if d == nil {
		return nodes.NoOverrides(), errors.New("nil document")
	} else if _, found := d.views[view]; !found {
		return nodes.NoOverrides(), fmt.Errorf("view %d: %w", view, nodes.ErrNotFound)
	} else if settings, found := values[overrideKey{view: view, target: target}]; found {
		return settings, nil
	}

	return nodes.NoOverrides(), nil
}

// GetViewOverrides returns the overrides of an element in a view
func (d *Document) GetViewOverrides(view, element nodes.ElementId) (nodes.OverrideSettings, error) {
	if d == nil {
		return nodes.NoOverrides(), errors.New("nil document")
	}

	return d.readOverrides(d.elementOverrides, view, int64(element))
}

// SetViewOverrides sets the overrides of an element in a view
func (d *Document) SetViewOverrides(view, element nodes.ElementId, settings nodes.OverrideSettings) error {
	if _, err := d.writableView(view); err != nil {
		return err
	} else if _, found := d.elements[element]; !found {
		return fmt.Errorf("element %d: %w", element, nodes.ErrNotFound)
	}

	d.elementOverrides[overrideKey{view: view, target: int64(element)}] = settings
	return d.MarkExistingElementAsDirty(view)
}

// ViewOverriddenElements returns, sorted, the elements with overrides in view
func (d *Document) ViewOverriddenElements(view nodes.ElementId) []nodes.ElementId {
	if d == nil {
		return nil
	}

	var result []nodes.ElementId
	for key := range d.elementOverrides {
		if key.view == view {
			result = append(result, nodes.ElementId(key.target))
		}
	}

	slices.Sort(result)
	return result
}

// GetCategoryOverrides returns the overrides of a category in a view
func (d *Document) GetCategoryOverrides(view nodes.ElementId, category nodes.CategoryId) (nodes.OverrideSettings, error) {
	if d == nil {
		return nodes.NoOverrides(), errors.New("nil document")
	}

	return d.readOverrides(d.categoryOverrides, view, int64(category))
}

// SetCategoryOverrides sets the overrides of a category in a view
func (d *Document) SetCategoryOverrides(view nodes.ElementId, category nodes.CategoryId, settings nodes.OverrideSettings) error {
	if _, err := d.writableView(view); err != nil {
		return err
	} else if _, found := d.categories[category]; !found {
		return fmt.Errorf("category %d: %w", category, nodes.ErrNotFound)
	}

	d.categoryOverrides[overrideKey{view: view, target: int64(category)}] = settings
	return d.MarkExistingElementAsDirty(view)
}

// GetFilterOverrides returns the overrides of a filter in a view
func (d *Document) GetFilterOverrides(view, filter nodes.ElementId) (nodes.OverrideSettings, error) {
	if d == nil {
		return nodes.NoOverrides(), errors.New("nil document")
	}

	return d.readOverrides(d.filterOverrides, view, int64(filter))
}

// SetFilterOverrides sets the overrides of an attached filter in a view
func (d *Document) SetFilterOverrides(view, filter nodes.ElementId, settings nodes.OverrideSettings) error {
	if _, err := d.writableView(view); err != nil {
		return err
	} else if !slices.Contains(d.viewFilters[view], filter) {
		return fmt.Errorf("filter %d is not attached to view %d: %w", filter, view, nodes.ErrNotFound)
	}

	d.filterOverrides[overrideKey{view: view, target: int64(filter)}] = settings
	return d.MarkExistingElementAsDirty(view)
}

// GetViewFilters returns the ordered filters of the view
func (d *Document) GetViewFilters(view nodes.ElementId) ([]nodes.ElementId, error) {
	if d == nil {
		return nil, errors.New("nil document")
	} else if _, found := d.views[view]; !found {
		return nil, fmt.Errorf("view %d: %w", view, nodes.ErrNotFound)
	} else if d.unreadable[view] {
		return nil, fmt.Errorf("filters of view %d cannot be read: %w", view, nodes.ErrHostRejected)
	}

	return slices.Clone(d.viewFilters[view]), nil
}

// AttachFilter appends filter to the view filters
func (d *Document) AttachFilter(view, filter nodes.ElementId) error {
	current, err := d.writableView(view)
	if err != nil {
		return err
	} else if !current.Kind.AcceptsFilters() {
		return fmt.Errorf("view %q of kind %s has no filters: %w", current.Name, current.Kind, nodes.ErrHostRejected)
	} else if _, found := d.filters[filter]; !found {
		return fmt.Errorf("filter %d: %w", filter, nodes.ErrNotFound)
	} else if slices.Contains(d.viewFilters[view], filter) {
		return fmt.Errorf("filter %d in view %d: %w", filter, view, nodes.ErrAlreadyAttached)
	}

	d.viewFilters[view] = append(d.viewFilters[view], filter)
	return d.MarkExistingElementAsDirty(view)
}

// DetachFilter removes filter and its overrides from the view
func (d *Document) DetachFilter(view, filter nodes.ElementId) error {
	if _, err := d.writableView(view); err != nil {
		return err
	}

	index := slices.Index(d.viewFilters[view], filter)
	if index < 0 {
		return fmt.Errorf("filter %d is not attached to view %d: %w", filter, view, nodes.ErrNotFound)
	}

	d.viewFilters[view] = slices.Delete(d.viewFilters[view], index, index+1)
	delete(d.filterOverrides, overrideKey{view: view, target: int64(filter)})
	return d.MarkExistingElementAsDirty(view)
}

// IsParameterFilterable uses declared filterable parameters of the category.
// Without declaration, any parameter present on an element of the category is filterable.
// Phase parameters are always filterable.
func (d *Document) IsParameterFilterable(category nodes.CategoryId, name string) bool {
	if d == nil {
		return false
	} else if strings.EqualFold(name, nodes.BuiltInPhaseCreated) || strings.EqualFold(name, nodes.BuiltInPhaseDemolished) {
		return true
	} else if declared, found := d.filterable[category]; found {
		return declared[strings.ToLower(name)]
	}

	for id, element := range d.elements {
		if element.Category != category {
			continue
		} else if _, found := d.GetParameter(id, name); found {
			return true
		}
	}

	return false
}
