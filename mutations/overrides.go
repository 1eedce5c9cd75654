package mutations

import (
	"fmt"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/nodes"
)

// overridableView returns a failure if view cannot receive overrides.
// Views controlled by a template reject overrides the same way views of a kind without graphics do.
func overridableView(doc nodes.ViewSource, view, element nodes.ElementId) (nodes.View, *nodes.Outcome) {
	result, found := doc.View(view)
	if !found {
		failure := nodes.FailedOutcome(element, fmt.Errorf("view %d: %w", view, nodes.ErrNotFound))
		return result, &failure
	} else if !result.AllowsOverrides {
		failure := nodes.FailedOutcome(element, fmt.Errorf("view %q does not allow overrides: %w", result.Name, nodes.ErrHostRejected))
		return result, &failure
	} else if result.LockedByTemplate {
		failure := nodes.FailedOutcome(element, fmt.Errorf("view %q is controlled by template %d: %w", result.Name, result.TemplateId, nodes.ErrHostRejected))
		return result, &failure
	}

	return result, nil
}

// OverrideElement sets the graphics of matching elements in a view
type OverrideElement struct {
	// View to set overrides in
	View nodes.ElementId
	// Settings to apply
	Settings nodes.OverrideSettings
}

// Name describes the mutation
func (o OverrideElement) Name() string {
	return fmt.Sprintf("override graphics in view %d", o.View)
}

// Apply sets the overrides of element in the view
func (o OverrideElement) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	}

	view, failure := overridableView(doc, o.View, element.Id)
	if failure != nil {
		return *failure
	}

	if current, err := doc.GetViewOverrides(view.Id, element.Id); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	} else if current == o.Settings {
		return nodes.SkippedOutcome(element.Id, fmt.Sprintf("same graphics in view %q", view.Name))
	} else if err := doc.SetViewOverrides(view.Id, element.Id, o.Settings); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	}

	return nodes.AppliedOutcome(element.Id, fmt.Sprintf("graphics set in view %q", view.Name))
}

// OverrideCategory sets the graphics of the category of matching elements in a view.
// Once the first element of a category is processed, the others are no op.
type OverrideCategory struct {
	// View to set overrides in
	View nodes.ElementId
	// Settings to apply
	Settings nodes.OverrideSettings
}

// Name describes the mutation
func (o OverrideCategory) Name() string {
	return fmt.Sprintf("override category graphics in view %d", o.View)
}

// Apply sets the overrides of the category of element in the view
func (o OverrideCategory) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	}

	view, failure := overridableView(doc, o.View, element.Id)
	if failure != nil {
		return *failure
	}

	if current, err := doc.GetCategoryOverrides(view.Id, element.Category); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	} else if current == o.Settings {
		return nodes.SkippedOutcome(element.Id, fmt.Sprintf("same category graphics in view %q", view.Name))
	} else if err := doc.SetCategoryOverrides(view.Id, element.Category, o.Settings); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	}

	return nodes.AppliedOutcome(element.Id, fmt.Sprintf("category %d graphics set in view %q", element.Category, view.Name))
}

// AttachFilter attaches a filter to matching views, optionally with graphics.
// Elements that are not views fail with ErrNotFound.
type AttachFilter struct {
	// Filter to attach
	Filter filters.Filter
	// Settings are the filter graphics, nil to keep current ones
	Settings *nodes.OverrideSettings
}

// Name describes the mutation
func (a AttachFilter) Name() string {
	return fmt.Sprintf("attach filter %q", a.Filter.Name())
}

// Apply attaches the filter to the view
func (a AttachFilter) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	} else if a.Settings == nil {
		return filters.Attach(doc, element.Id, a.Filter)
	}

	return filters.AttachWithOverrides(doc, element.Id, a.Filter, *a.Settings)
}

// DetachFilter removes a filter from matching views
type DetachFilter struct {
	// Filter to remove
	Filter filters.Filter
}

// Name describes the mutation
func (d DetachFilter) Name() string {
	return fmt.Sprintf("detach filter %q", d.Filter.Name())
}

// Apply removes the filter from the view
func (d DetachFilter) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	}

	return filters.Detach(doc, element.Id, d.Filter)
}
