package storage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/nodes"
)

// LoadDocument builds a document and its filters from a snapshot.
// Errors on single elements are joined, the whole load fails if any.
func LoadDocument(dto DocumentDTO) (*graphs.Document, []filters.Filter, error) {
	id := dto.Id
	if len(id) == 0 {
		id = uuid.NewString()
	}

	result := graphs.NewDocumentWithId(id, dto.Name)
	var globalErr error

	for _, category := range dto.Categories {
		if err := result.AddCategory(nodes.Category{Id: nodes.CategoryId(category.Id), Name: category.Name}); err != nil {
			globalErr = errors.Join(globalErr, err)
		}
	}

	phases := make([]nodes.Phase, 0, len(dto.Phases))
	for _, phase := range dto.Phases {
		phases = append(phases, nodes.Phase{Id: nodes.ElementId(phase.Id), Name: phase.Name, Sequence: phase.Sequence})
	}

	result.SetPhases(phases)

	for _, elementDTO := range dto.Elements {
		if element, err := deserializeElement(elementDTO); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else if err := result.AddElement(element); err != nil {
			globalErr = errors.Join(globalErr, err)
		}
	}

	for key, names := range dto.Filterable {
		if category, err := findCategory(result, key); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			result.SetFilterableParameters(category, names...)
		}
	}

	for _, viewDTO := range dto.Views {
		globalErr = errors.Join(globalErr, addView(result, viewDTO))
	}

	var loadedFilters []filters.Filter
	for _, filterDTO := range dto.Filters {
		if filter, err := addFilter(result, filterDTO); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			loadedFilters = append(loadedFilters, filter)
		}
	}

	// graphics and filters go before templates lock the views
	for _, viewDTO := range dto.Views {
		globalErr = errors.Join(globalErr, completeView(result, viewDTO))
	}

	if globalErr != nil {
		return nil, nil, globalErr
	}

	result.ClearDirtyElements()
	return result, loadedFilters, nil
}

// deserializeElement reads an element and its parameters
func deserializeElement(dto ElementDTO) (nodes.Element, error) {
	element := nodes.NewElement(nodes.ElementId(dto.Id), nodes.CategoryId(dto.Category), dto.Class, dto.Name)
	if dto.TypeId != nil {
		element.TypeId = nodes.ElementId(*dto.TypeId)
	}

	var globalErr error
	for _, parameterDTO := range dto.Parameters {
		if parameter, err := deserializeParameter(parameterDTO); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			globalErr = errors.Join(globalErr, element.SetParameter(parameter))
		}
	}

	for _, parameterDTO := range dto.BuiltIns {
		if parameter, err := deserializeParameter(parameterDTO); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			globalErr = errors.Join(globalErr, element.SetParameter(parameter.AsBuiltIn()))
		}
	}

	typeParameters := make([]nodes.Parameter, 0, len(dto.TypeParameters))
	for _, parameterDTO := range dto.TypeParameters {
		if parameter, err := deserializeParameter(parameterDTO); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			typeParameters = append(typeParameters, parameter)
		}
	}

	element.SetTypeParameters(typeParameters)
	if globalErr != nil {
		return element, fmt.Errorf("element %d: %w", dto.Id, globalErr)
	}

	return element, nil
}

// addView adds the view and its members
func addView(doc *graphs.Document, dto ViewDTO) error {
	kind, errKind := nodes.ParseViewKind(dto.Kind)
	if errKind != nil {
		return fmt.Errorf("view %d: %w", dto.Id, errKind)
	}

	view := nodes.NewView(nodes.ElementId(dto.Id), dto.Name, kind)
	view.IsTemplate = dto.IsTemplate
	if dto.AllowsOverrides != nil {
		view.AllowsOverrides = *dto.AllowsOverrides
	}

	if err := doc.AddView(view); err != nil {
		return err
	}

	if len(dto.Members) != 0 {
		members := make([]nodes.ElementId, len(dto.Members))
		for index, member := range dto.Members {
			members[index] = nodes.ElementId(member)
		}

		return doc.SetViewMembers(view.Id, members)
	}

	return nil
}

// addFilter registers the filter record, then builds the filter
func addFilter(doc *graphs.Document, dto FilterDTO) (filters.Filter, error) {
	var globalErr error
	categories := make([]nodes.CategoryId, 0, len(dto.Categories))
	for _, value := range dto.Categories {
		if category, err := findCategory(doc, value); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			categories = append(categories, category)
		}
	}

	if globalErr != nil {
		return filters.Filter{}, fmt.Errorf("filter %q: %w", dto.Name, globalErr)
	}

	predicate, errPredicate := BuildPredicate(doc, dto.Predicate)
	if errPredicate != nil {
		return filters.Filter{}, fmt.Errorf("filter %q: %w", dto.Name, errPredicate)
	}

	record := graphs.FilterRecord{Id: nodes.ElementId(dto.Id), Name: dto.Name, Categories: categories}
	if err := doc.AddFilter(record); err != nil {
		return filters.Filter{}, err
	}

	return filters.New(doc, record.Id, dto.Name, categories, predicate)
}

// completeView attaches filters, sets graphics, then applies the template
func completeView(doc *graphs.Document, dto ViewDTO) error {
	var globalErr error
	viewId := nodes.ElementId(dto.Id)
	for _, attached := range dto.Filters {
		filterId := nodes.ElementId(attached.Filter)
		if err := doc.AttachFilter(viewId, filterId); err != nil {
			globalErr = errors.Join(globalErr, err)
			continue
		} else if attached.Overrides == nil {
			continue
		}

		if settings, err := deserializeOverrides(*attached.Overrides); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			globalErr = errors.Join(globalErr, doc.SetFilterOverrides(viewId, filterId, settings))
		}
	}

	for _, override := range dto.Categories {
		if settings, err := deserializeOverrides(override.Overrides); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			globalErr = errors.Join(globalErr, doc.SetCategoryOverrides(viewId, nodes.CategoryId(override.Category), settings))
		}
	}

	for _, override := range dto.Elements {
		if settings, err := deserializeOverrides(override.Overrides); err != nil {
			globalErr = errors.Join(globalErr, err)
		} else {
			globalErr = errors.Join(globalErr, doc.SetViewOverrides(viewId, nodes.ElementId(override.Element), settings))
		}
	}

	if dto.TemplateId != nil {
		globalErr = errors.Join(globalErr, doc.ApplyTemplate(viewId, nodes.ElementId(*dto.TemplateId), dto.Locked))
	}

	if dto.Unreadable {
		doc.MarkViewFiltersUnreadable(viewId)
	}

	return globalErr
}
