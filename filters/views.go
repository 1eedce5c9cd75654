package filters

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// ViewFilters is what attaching filters needs from a document
type ViewFilters interface {
	nodes.ViewSource
	nodes.FilterStore
}

// Attach appends filter to the view filters.
// Filter is validated again against the categories the document has now.
// Attaching an attached filter is a no op.
func Attach(doc ViewFilters, view nodes.ElementId, filter Filter) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(view, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	}

	if categories, found := doc.FilterCategories(filter.Id()); found {
		filter = filter.WithCategories(categories)
	}

	if _, found := doc.View(view); !found {
		return nodes.FailedOutcome(view, fmt.Errorf("view %d: %w", view, nodes.ErrNotFound))
	} else if err := filter.Validate(doc); err != nil {
		return nodes.FailedOutcome(view, err)
	}

	attached, errRead := doc.GetViewFilters(view)
	if errRead != nil {
		return nodes.FailedOutcome(view, errRead)
	} else if slices.Contains(attached, filter.Id()) {
		return nodes.SkippedOutcome(view, fmt.Sprintf("filter %q already attached", filter.Name()))
	}

	if err := doc.AttachFilter(view, filter.Id()); errors.Is(err, nodes.ErrAlreadyAttached) {
		return nodes.SkippedOutcome(view, fmt.Sprintf("filter %q already attached", filter.Name()))
	} else if err != nil {
		return nodes.FailedOutcome(view, err)
	}

	return nodes.AppliedOutcome(view, fmt.Sprintf("filter %q attached", filter.Name()))
}

// Detach removes filter from the view filters, a no op if it was not attached
func Detach(doc ViewFilters, view nodes.ElementId, filter Filter) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(view, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	} else if _, found := doc.View(view); !found {
		return nodes.FailedOutcome(view, fmt.Errorf("view %d: %w", view, nodes.ErrNotFound))
	}

	attached, errRead := doc.GetViewFilters(view)
	if errRead != nil {
		return nodes.FailedOutcome(view, errRead)
	} else if !slices.Contains(attached, filter.Id()) {
		return nodes.SkippedOutcome(view, fmt.Sprintf("filter %q not attached", filter.Name()))
	} else if err := doc.DetachFilter(view, filter.Id()); err != nil {
		return nodes.FailedOutcome(view, err)
	}

	return nodes.AppliedOutcome(view, fmt.Sprintf("filter %q detached", filter.Name()))
}

// FilterOverrides is what changing filter graphics needs from a document
type FilterOverrides interface {
	ViewFilters
	GetFilterOverrides(view, filter nodes.ElementId) (nodes.OverrideSettings, error)
	SetFilterOverrides(view, filter nodes.ElementId, settings nodes.OverrideSettings) error
}

// SetOverrides changes the graphics of an attached filter in a view
func SetOverrides(doc FilterOverrides, view nodes.ElementId, filter Filter, settings nodes.OverrideSettings) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(view, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	}

	attached, errRead := doc.GetViewFilters(view)
	if errRead != nil {
		return nodes.FailedOutcome(view, errRead)
	} else if !slices.Contains(attached, filter.Id()) {
		return nodes.FailedOutcome(view, fmt.Errorf("filter %q not attached to view %d: %w", filter.Name(), view, nodes.ErrNotFound))
	}

	if current, err := doc.GetFilterOverrides(view, filter.Id()); err != nil {
		return nodes.FailedOutcome(view, err)
	} else if current == settings {
		return nodes.SkippedOutcome(view, fmt.Sprintf("filter %q overrides unchanged", filter.Name()))
	} else if err := doc.SetFilterOverrides(view, filter.Id(), settings); err != nil {
		return nodes.FailedOutcome(view, err)
	}

	return nodes.AppliedOutcome(view, fmt.Sprintf("filter %q overrides set", filter.Name()))
}

// AttachWithOverrides attaches filter if needed, then sets its graphics
func AttachWithOverrides(doc FilterOverrides, view nodes.ElementId, filter Filter, settings nodes.OverrideSettings) nodes.Outcome {
	attach := Attach(doc, view, filter)
	if attach.Status == nodes.Failed {
		return attach
	}

	overrides := SetOverrides(doc, view, filter, settings)
	return combine(view, attach, overrides)
}

// CopyFilters attaches the filters of source to each target, with their graphics.
// Known filters are needed to validate categories, other filters of source fail.
// An unreadable source aborts the copy.
func CopyFilters(doc FilterOverrides, source nodes.ElementId, targets []nodes.ElementId, known []Filter) ([]nodes.Outcome, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document: %w", nodes.ErrNilValue)
	}

	sourceFilters, errRead := doc.GetViewFilters(source)
	if errRead != nil {
		return nil, fmt.Errorf("reading filters of view %d: %w", source, errRead)
	}

	knownById := make(map[nodes.ElementId]Filter, len(known))
	for _, filter := range known {
		knownById[filter.Id()] = filter
	}

	sortedTargets := slices.Clone(targets)
	slices.Sort(sortedTargets)
	sortedTargets = slices.Compact(sortedTargets)

	var result []nodes.Outcome
	for _, target := range sortedTargets {
		if target == source {
			continue
		}

		for _, filterId := range sourceFilters {
			filter, found := knownById[filterId]
			if !found {
				result = append(result, nodes.FailedOutcome(target, fmt.Errorf("filter %d: %w", filterId, nodes.ErrNotFound)))
				continue
			}

			settings, errSettings := doc.GetFilterOverrides(source, filterId)
			if errSettings != nil {
				result = append(result, nodes.FailedOutcome(target, errSettings))
			} else if settings.IsEmpty() {
				result = append(result, Attach(doc, target, filter))
			} else {
				result = append(result, AttachWithOverrides(doc, target, filter, settings))
			}
		}
	}

	return result, nil
}

// combine merges two outcomes on the same element: any failure fails, any change applies
func combine(element nodes.ElementId, first, second nodes.Outcome) nodes.Outcome {
	switch {
	case first.Status == nodes.Failed:
		return first
	case second.Status == nodes.Failed:
		return second
	case first.Status == nodes.Applied || second.Status == nodes.Applied:
		return nodes.AppliedOutcome(element, first.Detail+", "+second.Detail)
	default:
		return nodes.SkippedOutcome(element, first.Detail+", "+second.Detail)
	}
}
