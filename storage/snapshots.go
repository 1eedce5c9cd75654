package storage

import (
	"slices"
	"strconv"

	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/nodes"
)

// RefreshSnapshot returns a copy of snapshot with the changes made to doc since load.
// Only dirty elements are serialized again.
func RefreshSnapshot(snapshot DocumentDTO, doc *graphs.Document) DocumentDTO {
	if doc == nil {
		return snapshot
	}

	result := snapshot
	result.Elements = slices.Clone(snapshot.Elements)
	result.Views = slices.Clone(snapshot.Views)
	result.Filters = slices.Clone(snapshot.Filters)

	for _, id := range doc.DirtyElements() {
		if index := slices.IndexFunc(result.Elements, func(e ElementDTO) bool { return e.Id == int64(id) }); index >= 0 {
			if element, found := doc.Element(id); !found {
				continue
			} else if original, err := deserializeElement(result.Elements[index]); err == nil && nodes.AreSameElements(original, element) {
				// changed then changed back
				continue
			} else {
				refreshed := SerializeElement(element)
				// type parameters belong to the type, not to the instance
				refreshed.TypeParameters = result.Elements[index].TypeParameters
				result.Elements[index] = refreshed
			}
		} else if index := slices.IndexFunc(result.Views, func(v ViewDTO) bool { return v.Id == int64(id) }); index >= 0 {
			result.Views[index] = refreshView(result.Views[index], doc)
		} else if index := slices.IndexFunc(result.Filters, func(f FilterDTO) bool { return f.Id == int64(id) }); index >= 0 {
			if record, found := doc.Filter(id); found {
				result.Filters[index] = refreshFilter(result.Filters[index], record, doc)
			}
		}
	}

	return result
}

// refreshView reads name, filters and graphics of a view
func refreshView(dto ViewDTO, doc *graphs.Document) ViewDTO {
	viewId := nodes.ElementId(dto.Id)
	if view, found := doc.View(viewId); found {
		dto.Name = view.Name
	}

	if attached, err := doc.GetViewFilters(viewId); err == nil {
		dto.Filters = make([]AttachedFilterDTO, 0, len(attached))
		for _, filterId := range attached {
			entry := AttachedFilterDTO{Filter: int64(filterId)}
			if settings, err := doc.GetFilterOverrides(viewId, filterId); err == nil && !settings.IsEmpty() {
				overrides := SerializeOverrides(settings)
				entry.Overrides = &overrides
			}

			dto.Filters = append(dto.Filters, entry)
		}
	}

	dto.Categories = nil
	for _, category := range doc.Categories() {
		if settings, err := doc.GetCategoryOverrides(viewId, category.Id); err == nil && !settings.IsEmpty() {
			dto.Categories = append(dto.Categories, CategoryOverride{Category: int64(category.Id), Overrides: SerializeOverrides(settings)})
		}
	}

	dto.Elements = nil
	for _, element := range doc.ViewOverriddenElements(viewId) {
		if settings, err := doc.GetViewOverrides(viewId, element); err == nil && !settings.IsEmpty() {
			dto.Elements = append(dto.Elements, ElementOverride{Element: int64(element), Overrides: SerializeOverrides(settings)})
		}
	}

	return dto
}

// refreshFilter reads name and categories of a filter.
// Categories are written again as ids only when they changed.
func refreshFilter(dto FilterDTO, record graphs.FilterRecord, doc *graphs.Document) FilterDTO {
	dto.Name = record.Name
	dto.Categories = slices.Clone(dto.Categories)

	loaded := make([]nodes.CategoryId, 0, len(dto.Categories))
	for _, value := range dto.Categories {
		if category, err := findCategory(doc, value); err == nil {
			loaded = append(loaded, category)
		}
	}

	current := slices.Clone(record.Categories)
	slices.Sort(loaded)
	slices.Sort(current)
	if slices.Equal(loaded, current) {
		return dto
	}

	dto.Categories = make([]string, 0, len(current))
	for _, category := range current {
		dto.Categories = append(dto.Categories, strconv.FormatInt(int64(category), 10))
	}

	return dto
}
