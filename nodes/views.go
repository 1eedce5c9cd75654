package nodes

import (
	"fmt"
	"strings"
)

// ViewKind is the kind of a view
type ViewKind int

const (
	ViewFloorPlan ViewKind = iota
	ViewCeilingPlan
	ViewSection
	ViewElevation
	View3D
	ViewSchedule
	ViewSheet
	ViewLegend
	ViewDrafting
)

var viewKindNames = map[ViewKind]string{
	ViewFloorPlan:   "FloorPlan",
	ViewCeilingPlan: "CeilingPlan",
	ViewSection:     "Section",
	ViewElevation:   "Elevation",
	View3D:          "ThreeD",
	ViewSchedule:    "Schedule",
	ViewSheet:       "Sheet",
	ViewLegend:      "Legend",
	ViewDrafting:    "Drafting",
}

// String returns the name of the kind
func (k ViewKind) String() string {
	if name, found := viewKindNames[k]; found {
		return name
	}

	return fmt.Sprintf("ViewKind(%d)", int(k))
}

// ParseViewKind returns the kind matching name, case insensitive
func ParseViewKind(name string) (ViewKind, error) {
	for kind, kindName := range viewKindNames {
		if strings.EqualFold(kindName, name) {
			return kind, nil
		}
	}

	return ViewFloorPlan, fmt.Errorf("unknown view kind %q: %w", name, ErrInvalid)
}

// AcceptsFilters returns true for kinds that may display filters
func (k ViewKind) AcceptsFilters() bool {
	switch k {
	case ViewSchedule, ViewSheet:
		return false
	default:
		return true
	}
}

// View is a named scope with its own overrides and filters.
// A view template is a view with IsTemplate set.
type View struct {
	// Id of the view, it is also an element id
	Id ElementId
	// Name of the view
	Name string
	// Kind of view
	Kind ViewKind
	// IsTemplate is true for view templates
	IsTemplate bool
	// TemplateId is the template applied to this view, InvalidElementId if none
	TemplateId ElementId
	// AllowsOverrides is false for views that reject graphic overrides (schedules)
	AllowsOverrides bool
	// LockedByTemplate is true when the applied template controls overrides and filters
	LockedByTemplate bool
}

// NewView returns a view with no template, accepting overrides when kind does
func NewView(id ElementId, name string, kind ViewKind) View {
	return View{
		Id:              id,
		Name:            name,
		Kind:            kind,
		TemplateId:      InvalidElementId,
		AllowsOverrides: kind.AcceptsFilters(),
	}
}

// Color is a RGB color
type Color struct {
	R, G, B uint8
}

// String returns the color as R-G-B
func (c Color) String() string {
	return fmt.Sprintf("%d-%d-%d", c.R, c.G, c.B)
}

// OverrideSettings are the graphic overrides of an element, a category or a filter in a view.
// They are compared with ==, the zero value means no override.
type OverrideSettings struct {
	LineColor      Color
	LineWeight     int
	PatternId      ElementId
	PatternVisible bool
	Halftone       bool
	Transparency   int
}

// NoOverrides returns the settings of a view element with no override
func NoOverrides() OverrideSettings {
	return OverrideSettings{PatternId: InvalidElementId, PatternVisible: true}
}

// IsEmpty returns true for settings that change nothing
func (o OverrideSettings) IsEmpty() bool {
	return o == NoOverrides() || o == OverrideSettings{}
}
