package storage

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

// NameIndex finds document entities by name
type NameIndex interface {
	CategoryByName(name string) (nodes.Category, bool)
	ViewByName(name string) (nodes.View, bool)
	Phases() nodes.PhaseSequence
	FilterByName(name string) (graphs.FilterRecord, bool)
}

// FindFilter returns the known filter with that name in the document.
// Names are read from the document, so renamed filters are found by their new name.
func FindFilter(index NameIndex, known []filters.Filter, name string) (filters.Filter, error) {
	if index == nil {
		return filters.Filter{}, fmt.Errorf("filter %q: %w", name, nodes.ErrNotFound)
	} else if record, found := index.FilterByName(name); !found {
		return filters.Filter{}, fmt.Errorf("filter %q: %w", name, nodes.ErrNotFound)
	} else if position := slices.IndexFunc(known, func(f filters.Filter) bool { return f.Id() == record.Id }); position < 0 {
		return filters.Filter{}, fmt.Errorf("filter %q: %w", name, nodes.ErrNotFound)
	} else {
		return known[position], nil
	}
}

// PredicateDTO is a predicate tree. Kind decides which fields are used:
//   - category: Category
//   - equals, contains, begins_with: Parameter, Value, Storage (equals only), CaseSensitive
//   - compare: Parameter, Operator, Number, Epsilon
//   - exists, empty: Parameter
//   - phase: Phase, Status
//   - and, or, not: Operands
type PredicateDTO struct {
	Kind          string         `json:"kind" yaml:"kind"`
	Category      string         `json:"category,omitempty" yaml:"category,omitempty"`
	Parameter     string         `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Value         string         `json:"value,omitempty" yaml:"value,omitempty"`
	Storage       string         `json:"storage,omitempty" yaml:"storage,omitempty"`
	CaseSensitive bool           `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	Operator      string         `json:"operator,omitempty" yaml:"operator,omitempty"`
	Number        float64        `json:"number,omitempty" yaml:"number,omitempty"`
	Epsilon       float64        `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
	Phase         string         `json:"phase,omitempty" yaml:"phase,omitempty"`
	Status        string         `json:"status,omitempty" yaml:"status,omitempty"`
	Operands      []PredicateDTO `json:"operands,omitempty" yaml:"operands,omitempty"`
}

// ScopeDTO is a scope. Kind is all, view, category, explicit or intersection
type ScopeDTO struct {
	Kind     string     `json:"kind" yaml:"kind"`
	View     string     `json:"view,omitempty" yaml:"view,omitempty"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Ids      []int64    `json:"ids,omitempty" yaml:"ids,omitempty"`
	Parts    []ScopeDTO `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// MutationDTO is a mutation. Kind decides which fields are used:
//   - rename: one of Name, Prefix, Suffix, Template, Sequence
//   - set, set_if_empty: Parameter, Storage, Value
//   - number, number_if_empty: Parameter (a text), Sequence
//   - override, override_category: View, Overrides
//   - attach, detach: Filter (a name), Overrides for attach
type MutationDTO struct {
	Kind      string       `json:"kind" yaml:"kind"`
	Name      string       `json:"name,omitempty" yaml:"name,omitempty"`
	Prefix    string       `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix    string       `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Template  string       `json:"template,omitempty" yaml:"template,omitempty"`
	Parameter string       `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Storage   string       `json:"storage,omitempty" yaml:"storage,omitempty"`
	Value     string       `json:"value,omitempty" yaml:"value,omitempty"`
	View      string       `json:"view,omitempty" yaml:"view,omitempty"`
	Filter    string       `json:"filter,omitempty" yaml:"filter,omitempty"`
	Overrides *OverrideDTO `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Sequence  *SequenceDTO `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// SequenceDTO numbers matches in id order: prefix then start, start+1, ... on width digits
type SequenceDTO struct {
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Start  int    `json:"start,omitempty" yaml:"start,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
}

// RequestDTO is a query, with an optional mutation to apply to its matches
type RequestDTO struct {
	Scope     ScopeDTO     `json:"scope" yaml:"scope"`
	Predicate PredicateDTO `json:"predicate" yaml:"predicate"`
	Mutation  *MutationDTO `json:"mutation,omitempty" yaml:"mutation,omitempty"`
	Columns   []string     `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// findCategory reads a category id, or finds a category by name
func findCategory(index NameIndex, value string) (nodes.CategoryId, error) {
	if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
		return nodes.CategoryId(id), nil
	} else if index == nil {
		return 0, fmt.Errorf("category %q: %w", value, nodes.ErrNotFound)
	} else if category, found := index.CategoryByName(value); !found {
		return 0, fmt.Errorf("category %q: %w", value, nodes.ErrNotFound)
	} else {
		return category.Id, nil
	}
}

// findView reads a view id, or finds a view by name
func findView(index NameIndex, value string) (nodes.ElementId, error) {
	if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
		return nodes.ElementId(id), nil
	} else if index == nil {
		return nodes.InvalidElementId, fmt.Errorf("view %q: %w", value, nodes.ErrNotFound)
	} else if view, found := index.ViewByName(value); !found {
		return nodes.InvalidElementId, fmt.Errorf("view %q: %w", value, nodes.ErrNotFound)
	} else {
		return view.Id, nil
	}
}

// BuildPredicate returns the predicate the dto describes.
// Names of categories and phases are resolved with index.
func BuildPredicate(index NameIndex, dto PredicateDTO) (predicates.Predicate, error) {
	switch strings.ToLower(dto.Kind) {
	case "category":
		if category, err := findCategory(index, dto.Category); err != nil {
			return nil, err
		} else {
			return predicates.CategoryIs(category), nil
		}
	case "equals":
		kind := nodes.StorageString
		if len(dto.Storage) != 0 {
			if k, err := nodes.ParseStorageKind(dto.Storage); err != nil {
				return nil, err
			} else {
				kind = k
			}
		}

		if value, err := nodes.ParseValue(kind, dto.Value); err != nil {
			return nil, err
		} else {
			return predicates.ParameterEquals(dto.Parameter, value, dto.CaseSensitive), nil
		}
	case "contains":
		return predicates.ParameterContains(dto.Parameter, dto.Value, dto.CaseSensitive), nil
	case "begins_with":
		return predicates.ParameterBeginsWith(dto.Parameter, dto.Value, dto.CaseSensitive), nil
	case "compare":
		operator, errOperator := predicates.ParseOperator(dto.Operator)
		if errOperator != nil {
			return nil, errOperator
		} else if dto.Epsilon > 0 {
			return predicates.NumericCompareWithin(dto.Parameter, operator, dto.Number, dto.Epsilon), nil
		}

		return predicates.NumericCompare(dto.Parameter, operator, dto.Number), nil
	case "exists":
		return predicates.ParameterExists(dto.Parameter), nil
	case "empty":
		return predicates.ParameterIsEmpty(dto.Parameter), nil
	case "phase":
		if index == nil {
			return nil, fmt.Errorf("phase %q: %w", dto.Phase, nodes.ErrNotFound)
		}

		phases := index.Phases()
		phase, found := phases.FindByName(dto.Phase)
		if !found {
			return nil, fmt.Errorf("phase %q: %w", dto.Phase, nodes.ErrNotFound)
		} else if status, found := nodes.ParsePhaseStatus(dto.Status); !found {
			return nil, fmt.Errorf("phase status %q: %w", dto.Status, nodes.ErrInvalid)
		} else {
			return predicates.PhaseStatus(phases, phase.Id, status), nil
		}
	case "and", "or":
		var globalErr error
		operands := make([]predicates.Predicate, 0, len(dto.Operands))
		for _, operand := range dto.Operands {
			if p, err := BuildPredicate(index, operand); err != nil {
				globalErr = errors.Join(globalErr, err)
			} else {
				operands = append(operands, p)
			}
		}

		if globalErr != nil {
			return nil, globalErr
		} else if strings.EqualFold(dto.Kind, "and") {
			return predicates.And(operands...), nil
		}

		return predicates.Or(operands...), nil
	case "not":
		if len(dto.Operands) != 1 {
			return nil, fmt.Errorf("not expects one operand, got %d: %w", len(dto.Operands), nodes.ErrInvalid)
		} else if operand, err := BuildPredicate(index, dto.Operands[0]); err != nil {
			return nil, err
		} else {
			return predicates.Not(operand), nil
		}
	default:
		return nil, fmt.Errorf("unknown predicate kind %q: %w", dto.Kind, nodes.ErrInvalid)
	}
}

// BuildScope returns the scope the dto describes
func BuildScope(index NameIndex, dto ScopeDTO) (nodes.Scope, error) {
	switch strings.ToLower(dto.Kind) {
	case "", "all":
		return nodes.AllElements(), nil
	case "view":
		if view, err := findView(index, dto.View); err != nil {
			return nodes.Scope{}, err
		} else {
			return nodes.ElementsInView(view), nil
		}
	case "category":
		if category, err := findCategory(index, dto.Category); err != nil {
			return nodes.Scope{}, err
		} else {
			return nodes.ElementsInCategory(category), nil
		}
	case "explicit":
		ids := make([]nodes.ElementId, len(dto.Ids))
		for i, id := range dto.Ids {
			ids[i] = nodes.ElementId(id)
		}

		return nodes.ExplicitSet(ids...), nil
	case "intersection":
		var globalErr error
		parts := make([]nodes.Scope, 0, len(dto.Parts))
		for _, part := range dto.Parts {
			if scope, err := BuildScope(index, part); err != nil {
				globalErr = errors.Join(globalErr, err)
			} else {
				parts = append(parts, scope)
			}
		}

		if globalErr != nil {
			return nodes.Scope{}, globalErr
		}

		return nodes.Intersect(parts...), nil
	default:
		return nodes.Scope{}, fmt.Errorf("unknown scope kind %q: %w", dto.Kind, nodes.ErrInvalid)
	}
}

// BuildMutation returns the mutation the dto describes.
// Filters are found by their current name, then in known.
func BuildMutation(index NameIndex, known []filters.Filter, dto MutationDTO) (mutations.Mutation, error) {
	switch strings.ToLower(dto.Kind) {
	case "rename":
		switch {
		case len(dto.Name) != 0:
			return mutations.Rename{Candidate: mutations.Fixed(dto.Name)}, nil
		case len(dto.Prefix) != 0:
			return mutations.Rename{Candidate: mutations.WithPrefix(dto.Prefix)}, nil
		case len(dto.Suffix) != 0:
			return mutations.Rename{Candidate: mutations.WithSuffix(dto.Suffix)}, nil
		case len(dto.Template) != 0:
			return mutations.Rename{Candidate: mutations.FromTemplate(dto.Template)}, nil
		case dto.Sequence != nil:
			return mutations.Rename{Candidate: mutations.Sequential(dto.Sequence.Prefix, dto.Sequence.Start, dto.Sequence.Width)}, nil
		default:
			return nil, fmt.Errorf("rename needs a name, a prefix, a suffix, a template or a sequence: %w", nodes.ErrInvalid)
		}
	case "number", "number_if_empty":
		if len(dto.Parameter) == 0 {
			return nil, fmt.Errorf("no parameter to number: %w", nodes.ErrInvalid)
		} else if dto.Sequence == nil {
			return nil, fmt.Errorf("no sequence for %q: %w", dto.Parameter, nodes.ErrInvalid)
		}

		return mutations.SetParameterFrom{
			Parameter:   dto.Parameter,
			Source:      mutations.Sequential(dto.Sequence.Prefix, dto.Sequence.Start, dto.Sequence.Width),
			OnlyIfEmpty: strings.EqualFold(dto.Kind, "number_if_empty"),
		}, nil
	case "set", "set_if_empty":
		kind := nodes.StorageString
		if len(dto.Storage) != 0 {
			if k, err := nodes.ParseStorageKind(dto.Storage); err != nil {
				return nil, err
			} else {
				kind = k
			}
		}

		value, errValue := nodes.ParseValue(kind, dto.Value)
		if errValue != nil {
			return nil, errValue
		} else if len(dto.Parameter) == 0 {
			return nil, fmt.Errorf("no parameter to set: %w", nodes.ErrInvalid)
		} else if strings.EqualFold(dto.Kind, "set_if_empty") {
			return mutations.SetParameterIfEmpty(dto.Parameter, value), nil
		}

		return mutations.SetParameter{Parameter: dto.Parameter, Value: value}, nil
	case "override", "override_category":
		view, errView := findView(index, dto.View)
		if errView != nil {
			return nil, errView
		}

		settings := nodes.NoOverrides()
		if dto.Overrides != nil {
			if s, err := deserializeOverrides(*dto.Overrides); err != nil {
				return nil, err
			} else {
				settings = s
			}
		}

		if strings.EqualFold(dto.Kind, "override") {
			return mutations.OverrideElement{View: view, Settings: settings}, nil
		}

		return mutations.OverrideCategory{View: view, Settings: settings}, nil
	case "attach", "detach":
		filter, errFilter := FindFilter(index, known, dto.Filter)
		if errFilter != nil {
			return nil, errFilter
		} else if strings.EqualFold(dto.Kind, "detach") {
			return mutations.DetachFilter{Filter: filter}, nil
		} else if dto.Overrides == nil {
			return mutations.AttachFilter{Filter: filter}, nil
		} else if settings, err := deserializeOverrides(*dto.Overrides); err != nil {
			return nil, err
		} else {
			return mutations.AttachFilter{Filter: filter, Settings: &settings}, nil
		}
	default:
		return nil, fmt.Errorf("unknown mutation kind %q: %w", dto.Kind, nodes.ErrInvalid)
	}
}
