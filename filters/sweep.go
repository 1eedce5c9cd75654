package filters

import (
	"maps"
	"slices"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// SweepResult is the result of the unused filters computation
type SweepResult struct {
	// Unused are the filters no view uses, sorted
	Unused []nodes.ElementId
	// Used are the filters at least one view uses, sorted
	Used []nodes.ElementId
	// Unreadable are the views whose filters could not be read, sorted
	Unreadable []nodes.ElementId
}

// UnusedFilters returns allFilters minus the filters attached to any of allViews.
// Templates are views. A view whose filters cannot be read contributes nothing.
func UnusedFilters(store nodes.FilterStore, allFilters, allViews []nodes.ElementId) []nodes.ElementId {
	return sweep(store, allFilters, allViews).Unused
}

// Sweep computes unused filters over every filter and view of the document
func Sweep(doc ViewFilters) SweepResult {
	if doc == nil {
		return SweepResult{}
	}

	return sweep(doc, doc.FilterIds(), doc.ViewIds())
}

func sweep(store nodes.FilterStore, allFilters, allViews []nodes.ElementId) SweepResult {
	var result SweepResult
	// mark
	marked := make(map[nodes.ElementId]bool)
	if store != nil {
		for _, view := range allViews {
			attached, err := store.GetViewFilters(view)
			if err != nil {
				result.Unreadable = append(result.Unreadable, view)
				continue
			}

			for _, filter := range attached {
				marked[filter] = true
			}
		}
	}

	// sweep
	unused := make(map[nodes.ElementId]bool)
	used := make(map[nodes.ElementId]bool)
	for _, filter := range allFilters {
		if marked[filter] {
			used[filter] = true
		} else {
			unused[filter] = true
		}
	}

	result.Unused = sortedIds(unused)
	result.Used = sortedIds(used)
	slices.Sort(result.Unreadable)
	result.Unreadable = slices.Compact(result.Unreadable)
	return result
}

// sortedIds returns keys, sorted, never nil
func sortedIds(values map[nodes.ElementId]bool) []nodes.ElementId {
	result := slices.Collect(maps.Keys(values))
	if result == nil {
		return []nodes.ElementId{}
	}

	slices.Sort(result)
	return result
}
