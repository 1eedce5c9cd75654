package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// DocumentDTO is a full document snapshot, as read from files or built from the database
type DocumentDTO struct {
	Id         string              `json:"id" yaml:"id"`
	Name       string              `json:"name" yaml:"name"`
	Categories []CategoryDTO       `json:"categories" yaml:"categories"`
	Phases     []PhaseDTO          `json:"phases,omitempty" yaml:"phases,omitempty"`
	Elements   []ElementDTO        `json:"elements" yaml:"elements"`
	Views      []ViewDTO           `json:"views,omitempty" yaml:"views,omitempty"`
	Filters    []FilterDTO         `json:"filters,omitempty" yaml:"filters,omitempty"`
	Filterable map[string][]string `json:"filterable,omitempty" yaml:"filterable,omitempty"`
}

// CategoryDTO is a category
type CategoryDTO struct {
	Id   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// PhaseDTO is a phase. Sequence orders phases
type PhaseDTO struct {
	Id       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Sequence int    `json:"sequence" yaml:"sequence"`
}

// ElementDTO is an element with its parameters.
// Type parameters are the parameters of the element type, copied.
type ElementDTO struct {
	Id             int64          `json:"id" yaml:"id"`
	Category       int64          `json:"category" yaml:"category"`
	TypeId         *int64         `json:"type,omitempty" yaml:"type,omitempty"`
	Class          string         `json:"class,omitempty" yaml:"class,omitempty"`
	Name           string         `json:"name" yaml:"name"`
	Parameters     []ParameterDTO `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	BuiltIns       []ParameterDTO `json:"builtins,omitempty" yaml:"builtins,omitempty"`
	TypeParameters []ParameterDTO `json:"type_parameters,omitempty" yaml:"type_parameters,omitempty"`
}

// ParameterDTO is a parameter. No value means an empty parameter
type ParameterDTO struct {
	Name     string  `json:"name" yaml:"name"`
	Storage  string  `json:"storage,omitempty" yaml:"storage,omitempty"`
	Value    *string `json:"value,omitempty" yaml:"value,omitempty"`
	ReadOnly bool    `json:"read_only,omitempty" yaml:"read_only,omitempty"`
}

// ViewDTO is a view or a view template
type ViewDTO struct {
	Id              int64               `json:"id" yaml:"id"`
	Name            string              `json:"name" yaml:"name"`
	Kind            string              `json:"kind" yaml:"kind"`
	IsTemplate      bool                `json:"template,omitempty" yaml:"template,omitempty"`
	TemplateId      *int64              `json:"template_id,omitempty" yaml:"template_id,omitempty"`
	Locked          bool                `json:"locked,omitempty" yaml:"locked,omitempty"`
	AllowsOverrides *bool               `json:"allows_overrides,omitempty" yaml:"allows_overrides,omitempty"`
	Members         []int64             `json:"members,omitempty" yaml:"members,omitempty"`
	Filters         []AttachedFilterDTO `json:"filters,omitempty" yaml:"filters,omitempty"`
	Categories      []CategoryOverride  `json:"category_overrides,omitempty" yaml:"category_overrides,omitempty"`
	Elements        []ElementOverride   `json:"element_overrides,omitempty" yaml:"element_overrides,omitempty"`
	Unreadable      bool                `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
}

// AttachedFilterDTO is a filter in a view, with its graphics
type AttachedFilterDTO struct {
	Filter    int64        `json:"filter" yaml:"filter"`
	Overrides *OverrideDTO `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// CategoryOverride are graphics of a category in a view
type CategoryOverride struct {
	Category  int64       `json:"category" yaml:"category"`
	Overrides OverrideDTO `json:"overrides" yaml:"overrides"`
}

// ElementOverride are graphics of an element in a view
type ElementOverride struct {
	Element   int64       `json:"element" yaml:"element"`
	Overrides OverrideDTO `json:"overrides" yaml:"overrides"`
}

// OverrideDTO are graphic overrides. Colors are R-G-B
type OverrideDTO struct {
	LineColor      string `json:"line_color,omitempty" yaml:"line_color,omitempty"`
	LineWeight     int    `json:"line_weight,omitempty" yaml:"line_weight,omitempty"`
	PatternId      *int64 `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternVisible *bool  `json:"pattern_visible,omitempty" yaml:"pattern_visible,omitempty"`
	Halftone       bool   `json:"halftone,omitempty" yaml:"halftone,omitempty"`
	Transparency   int    `json:"transparency,omitempty" yaml:"transparency,omitempty"`
}

// FilterDTO is a parameter filter
type FilterDTO struct {
	Id         int64        `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Categories []string     `json:"categories" yaml:"categories"`
	Predicate  PredicateDTO `json:"predicate" yaml:"predicate"`
}

// OutcomeDTO is the outcome of a mutation on one element
type OutcomeDTO struct {
	Element int64  `json:"element" yaml:"element"`
	Status  string `json:"status" yaml:"status"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// SerializeElement returns the dto content of an element
func SerializeElement(e nodes.Element) ElementDTO {
	dto := ElementDTO{
		Id:       int64(e.Id),
		Category: int64(e.Category),
		Class:    e.Class,
		Name:     e.Name,
	}

	if e.TypeId != nodes.InvalidElementId {
		typeId := int64(e.TypeId)
		dto.TypeId = &typeId
	}

	dto.Parameters = serializeParameters(e.Parameters())
	dto.BuiltIns = serializeParameters(e.BuiltInParameters())
	dto.TypeParameters = serializeParameters(e.TypeParameters())
	return dto
}

// serializeParameters maps parameters to dtos
func serializeParameters(parameters []nodes.Parameter) []ParameterDTO {
	if len(parameters) == 0 {
		return nil
	}

	result := make([]ParameterDTO, 0, len(parameters))
	for _, parameter := range parameters {
		dto := ParameterDTO{
			Name:     parameter.Name,
			Storage:  parameter.Kind.String(),
			ReadOnly: parameter.ReadOnly,
		}

		if parameter.HasValue {
			value := parameter.Value.String()
			dto.Value = &value
		}

		result = append(result, dto)
	}

	return result
}

// SerializeOutcome returns the dto of an outcome
func SerializeOutcome(outcome nodes.Outcome) OutcomeDTO {
	return OutcomeDTO{
		Element: int64(outcome.Element),
		Status:  outcome.Status.String(),
		Detail:  outcome.Detail,
	}
}

// deserializeParameter reads a parameter, string storage by default
func deserializeParameter(dto ParameterDTO) (nodes.Parameter, error) {
	var result nodes.Parameter
	if len(strings.TrimSpace(dto.Name)) == 0 {
		return result, fmt.Errorf("parameter with no name: %w", nodes.ErrInvalid)
	}

	kind := nodes.StorageString
	if len(dto.Storage) != 0 {
		if k, err := nodes.ParseStorageKind(dto.Storage); err != nil {
			return result, fmt.Errorf("parameter %q: %w", dto.Name, err)
		} else {
			kind = k
		}
	}

	if dto.Value == nil {
		result = nodes.NewEmptyParameter(dto.Name, kind)
	} else if value, err := nodes.ParseValue(kind, *dto.Value); err != nil {
		return result, fmt.Errorf("parameter %q: %w", dto.Name, err)
	} else {
		result = nodes.NewParameter(dto.Name, value)
	}

	if dto.ReadOnly {
		result = result.AsReadOnly()
	}

	return result, nil
}

// deserializeOverrides reads graphic overrides. Missing values mean no override
func deserializeOverrides(dto OverrideDTO) (nodes.OverrideSettings, error) {
	result := nodes.NoOverrides()
	result.LineWeight = dto.LineWeight
	result.Halftone = dto.Halftone
	result.Transparency = dto.Transparency
	if dto.PatternId != nil {
		result.PatternId = nodes.ElementId(*dto.PatternId)
	}

	if dto.PatternVisible != nil {
		result.PatternVisible = *dto.PatternVisible
	}

	if len(dto.LineColor) != 0 {
		if color, err := ParseColor(dto.LineColor); err != nil {
			return result, err
		} else {
			result.LineColor = color
		}
	}

	return result, nil
}

// SerializeOverrides returns the dto of overrides
func SerializeOverrides(settings nodes.OverrideSettings) OverrideDTO {
	pattern := int64(settings.PatternId)
	visible := settings.PatternVisible
	return OverrideDTO{
		LineColor:      settings.LineColor.String(),
		LineWeight:     settings.LineWeight,
		PatternId:      &pattern,
		PatternVisible: &visible,
		Halftone:       settings.Halftone,
		Transparency:   settings.Transparency,
	}
}

// ParseColor reads a R-G-B color
func ParseColor(value string) (nodes.Color, error) {
	var result nodes.Color
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return result, fmt.Errorf("color %q is not R-G-B: %w", value, nodes.ErrInvalid)
	}

	components := make([]uint8, 3)
	for index, part := range parts {
		if component, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8); err != nil {
			return result, fmt.Errorf("color %q: %w", value, nodes.ErrInvalid)
		} else {
			components[index] = uint8(component)
		}
	}

	result.R, result.G, result.B = components[0], components[1], components[2]
	return result, nil
}
