package filters_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

const (
	WALLS nodes.CategoryId = 10
	DOORS nodes.CategoryId = 20
)

// newFiltersDocument returns a document with walls, a door, two plans, a template and three filter records
func newFiltersDocument(t *testing.T) *graphs.Document {
	doc := graphs.NewDocumentWithId("doc", "Filters")
	doc.AddCategory(nodes.Category{Id: WALLS, Name: "Walls"})
	doc.AddCategory(nodes.Category{Id: DOORS, Name: "Doors"})

	wall := nodes.NewElement(1, WALLS, "Wall", "")
	wall.SetParameter(nodes.NewParameter("Material", nodes.NewStringValue("Concrete")))
	door := nodes.NewElement(2, DOORS, "Door", "Door-1")
	door.SetParameter(nodes.NewParameter("Fire Rating", nodes.NewStringValue("EI30")))
	for _, element := range []nodes.Element{wall, door} {
		if err := doc.AddElement(element); err != nil {
			t.Fatal(err)
		}
	}

	template := nodes.NewView(200, "Plans", nodes.ViewFloorPlan)
	template.IsTemplate = true
	for _, view := range []nodes.View{
		nodes.NewView(100, "Level 1", nodes.ViewFloorPlan),
		nodes.NewView(101, "Level 2", nodes.ViewFloorPlan),
		template,
	} {
		if err := doc.AddView(view); err != nil {
			t.Fatal(err)
		}
	}

	for id, name := range map[nodes.ElementId]string{301: "F1", 302: "F2", 303: "F3"} {
		if err := doc.AddFilter(graphs.FilterRecord{Id: id, Name: name, Categories: []nodes.CategoryId{WALLS}}); err != nil {
			t.Fatal(err)
		}
	}

	return doc
}

func newConcreteFilter(t *testing.T, doc *graphs.Document, id nodes.ElementId, name string) filters.Filter {
	predicate := predicates.ParameterEquals("Material", nodes.NewStringValue("Concrete"), false)
	filter, err := filters.New(doc, id, name, []nodes.CategoryId{WALLS}, predicate)
	if err != nil {
		t.Fatal(err)
	}

	return filter
}

func TestNewFilter(t *testing.T) {
	doc := newFiltersDocument(t)
	filter := newConcreteFilter(t, doc, 301, "F1")
	if filter.Name() != "F1" || filter.Id() != 301 {
		t.Error("filter fields mismatch")
	}

	wall, _ := doc.Element(1)
	door, _ := doc.Element(2)
	if !filter.Matches(wall) || filter.Matches(door) {
		t.Error("filter matching mismatch")
	}

	// doors have no material
	predicate := predicates.ParameterEquals("Material", nodes.NewStringValue("Concrete"), false)
	_, err := filters.New(doc, 304, "Doors", []nodes.CategoryId{WALLS, DOORS}, predicate)
	if !errors.Is(err, nodes.ErrInvalid) || !errors.Is(err, nodes.ErrIncompatibleCategories) {
		t.Errorf("expected incompatible categories, got %v", err)
	}

	if _, err := filters.New(doc, 304, "", []nodes.CategoryId{WALLS}, predicate); !errors.Is(err, nodes.ErrInvalid) {
		t.Error("empty name should fail")
	} else if _, err := filters.New(doc, 304, "None", nil, predicate); !errors.Is(err, nodes.ErrInvalid) {
		t.Error("no category should fail")
	} else if _, err := filters.New(nil, 304, "None", []nodes.CategoryId{WALLS}, predicate); !errors.Is(err, nodes.ErrNilValue) {
		t.Error("nil document should fail")
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	doc := newFiltersDocument(t)
	filter := newConcreteFilter(t, doc, 301, "F1")

	if outcome := filters.Attach(doc, 100, filter); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s: %s", outcome.Status, outcome.Detail)
	}

	if outcome := filters.Attach(doc, 100, filter); outcome.Status != nodes.SkippedNoop {
		t.Errorf("expected skipped, got %s", outcome.Status)
	}

	if attached, _ := doc.GetViewFilters(100); !slices.Equal(attached, []nodes.ElementId{301}) {
		t.Errorf("unexpected filters %v", attached)
	}

	if outcome := filters.Attach(doc, 999, filter); outcome.Status != nodes.Failed || !errors.Is(outcome.Reason, nodes.ErrNotFound) {
		t.Error("missing view should fail")
	}
}

func TestAttachReadsCurrentCategories(t *testing.T) {
	doc := newFiltersDocument(t)
	filter := newConcreteFilter(t, doc, 301, "F1")

	// doors have no material
	if err := doc.SetFilterCategories(301, []nodes.CategoryId{WALLS, DOORS}); err != nil {
		t.Fatal(err)
	} else if outcome := filters.Attach(doc, 100, filter); outcome.Status != nodes.Failed || !errors.Is(outcome.Reason, nodes.ErrIncompatibleCategories) {
		t.Errorf("expected incompatible categories, got %s: %v", outcome.Status, outcome.Reason)
	} else if attached, _ := doc.GetViewFilters(100); len(attached) != 0 {
		t.Errorf("unexpected filters %v", attached)
	}

	if err := doc.SetFilterCategories(301, []nodes.CategoryId{WALLS}); err != nil {
		t.Fatal(err)
	} else if outcome := filters.Attach(doc, 100, filter); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s: %v", outcome.Status, outcome.Reason)
	}

	if err := doc.SetFilterCategories(301, nil); !errors.Is(err, nodes.ErrInvalid) {
		t.Error("no category should fail")
	} else if err := doc.SetFilterCategories(999, []nodes.CategoryId{WALLS}); !errors.Is(err, nodes.ErrNotFound) {
		t.Error("missing filter should fail")
	}
}

func TestDetach(t *testing.T) {
	doc := newFiltersDocument(t)
	filter := newConcreteFilter(t, doc, 301, "F1")

	if outcome := filters.Detach(doc, 100, filter); outcome.Status != nodes.SkippedNoop {
		t.Errorf("detaching an unattached filter should skip, got %s", outcome.Status)
	}

	filters.Attach(doc, 100, filter)
	if outcome := filters.Detach(doc, 100, filter); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s", outcome.Status)
	} else if attached, _ := doc.GetViewFilters(100); len(attached) != 0 {
		t.Error("filter still attached")
	}
}

func TestAttachToLockedView(t *testing.T) {
	doc := newFiltersDocument(t)
	filter := newConcreteFilter(t, doc, 301, "F1")
	if err := doc.ApplyTemplate(100, 200, true); err != nil {
		t.Fatal(err)
	}

	outcome := filters.Attach(doc, 100, filter)
	if outcome.Status != nodes.Failed || !errors.Is(outcome.Reason, nodes.ErrHostRejected) {
		t.Errorf("expected host rejection, got %s", outcome.Status)
	}
}

func TestAttachWithOverrides(t *testing.T) {
	doc := newFiltersDocument(t)
	filter := newConcreteFilter(t, doc, 301, "F1")
	settings := nodes.NoOverrides()
	settings.LineColor = nodes.Color{R: 255}

	if outcome := filters.AttachWithOverrides(doc, 100, filter, settings); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s", outcome.Status)
	} else if current, _ := doc.GetFilterOverrides(100, 301); current != settings {
		t.Error("overrides not set")
	}

	if outcome := filters.AttachWithOverrides(doc, 100, filter, settings); outcome.Status != nodes.SkippedNoop {
		t.Errorf("expected skipped, got %s", outcome.Status)
	}

	// copy to level 2 and to the source itself, ignored
	outcomes, err := filters.CopyFilters(doc, 100, []nodes.ElementId{101, 100, 101}, []filters.Filter{filter})
	if err != nil {
		t.Fatal(err)
	} else if len(outcomes) != 1 || outcomes[0].Status != nodes.Applied || outcomes[0].Element != 101 {
		t.Errorf("unexpected copy outcomes %v", outcomes)
	} else if current, _ := doc.GetFilterOverrides(101, 301); current != settings {
		t.Error("overrides not copied")
	}
}

func TestSweep(t *testing.T) {
	doc := newFiltersDocument(t)
	f1 := newConcreteFilter(t, doc, 301, "F1")
	f3 := newConcreteFilter(t, doc, 303, "F3")

	filters.Attach(doc, 100, f1)
	// templates count as views
	filters.Attach(doc, 200, f3)

	result := filters.Sweep(doc)
	if !slices.Equal(result.Unused, []nodes.ElementId{302}) {
		t.Errorf("expected F2 only, got %v", result.Unused)
	} else if !slices.Equal(result.Used, []nodes.ElementId{301, 303}) {
		t.Errorf("expected F1 and F3, got %v", result.Used)
	} else if len(result.Unreadable) != 0 {
		t.Error("no unreadable view expected")
	}

	unused := filters.UnusedFilters(doc, []nodes.ElementId{301, 302, 303}, []nodes.ElementId{100})
	if !slices.Equal(unused, []nodes.ElementId{302, 303}) {
		t.Errorf("expected F2 and F3, got %v", unused)
	}
}

func TestSweepWithUnreadableView(t *testing.T) {
	doc := newFiltersDocument(t)
	filters.Attach(doc, 100, newConcreteFilter(t, doc, 301, "F1"))
	filters.Attach(doc, 200, newConcreteFilter(t, doc, 303, "F3"))
	doc.MarkViewFiltersUnreadable(200)

	result := filters.Sweep(doc)
	if !slices.Equal(result.Unused, []nodes.ElementId{302, 303}) {
		t.Errorf("unreadable view should contribute nothing, got %v", result.Unused)
	} else if !slices.Equal(result.Unreadable, []nodes.ElementId{200}) {
		t.Errorf("expected unreadable template, got %v", result.Unreadable)
	}

	if unused := filters.UnusedFilters(doc, nil, []nodes.ElementId{100}); len(unused) != 0 {
		t.Error("no filter, nothing unused")
	}
}
