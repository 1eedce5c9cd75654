package mutations_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
	"github.com/zefrenchwan/docfilters.git/queries"
)

const WALLS nodes.CategoryId = 10

// newMutationsDocument returns walls 1 to 3, named Wall-1, Wall-1_1 and W3, and a plan
func newMutationsDocument(t *testing.T) *graphs.Document {
	doc := graphs.NewDocumentWithId("doc", "Mutations")
	doc.AddCategory(nodes.Category{Id: WALLS, Name: "Walls"})
	for id, name := range map[nodes.ElementId]string{1: "Wall-1", 2: "Wall-1_1", 3: "W3"} {
		wall := nodes.NewElement(id, WALLS, "Wall", name)
		wall.SetParameter(nodes.NewParameter("Material", nodes.NewStringValue("Concrete")))
		wall.SetParameter(nodes.NewEmptyParameter("Comments", nodes.StorageString).AsBuiltIn())
		wall.SetParameter(nodes.NewParameter("Area", nodes.NewDoubleValue(10)).AsReadOnly())
		wall.SetParameter(nodes.NewParameter("Level", nodes.NewStringValue("L1")))
		if err := doc.AddElement(wall); err != nil {
			t.Fatal(err)
		}
	}

	if err := doc.AddView(nodes.NewView(100, "Level 1", nodes.ViewFloorPlan)); err != nil {
		t.Fatal(err)
	}

	return doc
}

func element(t *testing.T, doc *graphs.Document, id nodes.ElementId) nodes.Element {
	result, found := doc.Element(id)
	if !found {
		t.Fatalf("element %d not found", id)
	}

	return result
}

func TestRenameDisambiguates(t *testing.T) {
	doc := newMutationsDocument(t)
	rename := mutations.Rename{Candidate: mutations.Fixed("Wall-1")}

	outcome := rename.Apply(doc, element(t, doc, 3))
	if outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s: %s", outcome.Status, outcome.Detail)
	} else if current := element(t, doc, 3); current.Name != "Wall-1_2" {
		t.Errorf("expected Wall-1_2, got %s", current.Name)
	}

	// element already named Wall-1 keeps its name
	if outcome := rename.Apply(doc, element(t, doc, 1)); outcome.Status != nodes.SkippedNoop {
		t.Errorf("expected skipped, got %s", outcome.Status)
	}

	if outcome := (mutations.Rename{Candidate: mutations.Fixed(" ")}).Apply(doc, element(t, doc, 1)); outcome.Status != nodes.Failed || !errors.Is(outcome.Reason, nodes.ErrInvalid) {
		t.Error("blank name should fail")
	}

	if outcome := (mutations.Rename{}).Apply(doc, element(t, doc, 1)); outcome.Status != nodes.Failed {
		t.Error("no name function should fail")
	}
}

func TestRenameIsIdempotent(t *testing.T) {
	doc := newMutationsDocument(t)
	applier := mutations.NewApplier(nil)
	matches := queries.Query(doc, nodes.ElementsInCategory(WALLS), predicates.And())

	for _, candidate := range []mutations.NameFunc{mutations.WithPrefix("EXT-"), mutations.WithSuffix("-A")} {
		first := applier.Run(doc, matches, mutations.Rename{Candidate: candidate})
		if first.Applied != 3 || first.Failed != 0 {
			t.Errorf("expected 3 renames, got %d applied and %d failed", first.Applied, first.Failed)
		}

		second := applier.Run(doc, matches, mutations.Rename{Candidate: candidate})
		if second.Skipped != 3 || second.Applied != 0 {
			t.Errorf("second run should change nothing, got %d applied", second.Applied)
		}
	}

	if current := element(t, doc, 2); current.Name != "EXT-Wall-1_1-A" {
		t.Errorf("unexpected name %s", current.Name)
	}
}

func TestNameFuncs(t *testing.T) {
	wall := nodes.NewElement(1, WALLS, "Wall", "Wall-1")
	wall.SetParameter(nodes.NewParameter("Mark", nodes.NewStringValue("W01")).AsBuiltIn())
	wall.SetParameter(nodes.NewParameter("Width", nodes.NewDoubleValue(0.25)))

	if name, err := mutations.FromTemplate("{Mark} - {Width}")(wall); err != nil {
		t.Error(err)
	} else if name != "W01 - 0.25" {
		t.Errorf("unexpected name %q", name)
	}

	if _, err := mutations.FromTemplate("{Mark} - {Missing}")(wall); !errors.Is(err, nodes.ErrNotFound) {
		t.Errorf("expected missing parameter, got %v", err)
	}

	if name, _ := mutations.FromParameter("Mark")(wall); name != "W01" {
		t.Errorf("unexpected name %q", name)
	}

	floor := nodes.NewElement(2, WALLS, "Wall", "Floor_2")
	if name, _ := mutations.WithSuffix("r")(floor); name != "Floor_2r" {
		t.Errorf("unexpected name %q", name)
	} else if name, _ := mutations.WithSuffix("_2")(floor); name != "Floor_2" {
		t.Errorf("unexpected name %q", name)
	}
}

func TestRenameSuffixCollision(t *testing.T) {
	doc := newMutationsDocument(t)
	if err := doc.Rename(3, "Wall-1-A"); err != nil {
		t.Fatal(err)
	}

	floor := nodes.NewElement(4, WALLS, "Wall", "Floor_2")
	if err := doc.AddElement(floor); err != nil {
		t.Fatal(err)
	}

	rename := mutations.Rename{Candidate: mutations.WithSuffix("-A")}
	if outcome := rename.Apply(doc, element(t, doc, 1)); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s: %s", outcome.Status, outcome.Detail)
	} else if current := element(t, doc, 1); current.Name != "Wall-1-A_1" {
		t.Errorf("expected Wall-1-A_1, got %s", current.Name)
	}

	// suffix then counter is the result of the previous run
	if outcome := rename.Apply(doc, element(t, doc, 1)); outcome.Status != nodes.SkippedNoop {
		t.Errorf("expected skipped, got %s: %s", outcome.Status, outcome.Detail)
	}

	// a counter alone is part of the name
	if outcome := rename.Apply(doc, element(t, doc, 2)); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s", outcome.Status)
	} else if current := element(t, doc, 2); current.Name != "Wall-1_1-A" {
		t.Errorf("expected Wall-1_1-A, got %s", current.Name)
	}

	floors := mutations.Rename{Candidate: mutations.WithSuffix("r")}
	if outcome := floors.Apply(doc, element(t, doc, 4)); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s", outcome.Status)
	} else if current := element(t, doc, 4); current.Name != "Floor_2r" {
		t.Errorf("expected Floor_2r, got %s", current.Name)
	}
}

func TestSequentialNumbers(t *testing.T) {
	doc := newMutationsDocument(t)
	applier := mutations.NewApplier(nil)
	matches := queries.Query(doc, nodes.ElementsInCategory(WALLS), predicates.And())

	first := applier.Run(doc, matches, mutations.Rename{Candidate: mutations.Sequential("W-", 1, 3)})
	if first.Applied != 3 {
		t.Errorf("expected 3 renames, got %d", first.Applied)
	}

	for id, name := range map[nodes.ElementId]string{1: "W-001", 2: "W-002", 3: "W-003"} {
		if current := element(t, doc, id); current.Name != name {
			t.Errorf("expected %s, got %s", name, current.Name)
		}
	}

	// new run numbers the same elements the same way
	if second := applier.Run(doc, matches, mutations.Rename{Candidate: mutations.Sequential("W-", 1, 3)}); second.Skipped != 3 {
		t.Errorf("second run should change nothing, got %d applied", second.Applied)
	}

	// same element, same number
	sequence := mutations.Sequential("", 5, 0)
	if a, _ := sequence(element(t, doc, 2)); a != "5" {
		t.Errorf("unexpected number %q", a)
	} else if b, _ := sequence(element(t, doc, 2)); b != "5" {
		t.Errorf("number changed to %q", b)
	} else if c, _ := sequence(element(t, doc, 3)); c != "6" {
		t.Errorf("unexpected number %q", c)
	}

	marks := mutations.SetParameterFrom{Parameter: "Comments", Source: mutations.Sequential("C", 1, 2), OnlyIfEmpty: true}
	if summary := applier.Run(doc, matches, marks); summary.Applied != 3 {
		t.Errorf("expected 3 comments, got %d", summary.Applied)
	} else if parameter, _ := doc.GetParameter(3, "Comments"); parameter.Value.String() != "C03" {
		t.Errorf("unexpected comment %q", parameter.Value.String())
	}

	if outcome := (mutations.SetParameterFrom{Parameter: "Area", Source: mutations.Fixed("1")}).Apply(doc, element(t, doc, 1)); outcome.Status != nodes.Failed {
		t.Error("numeric parameter should fail")
	} else if outcome := (mutations.SetParameterFrom{Parameter: "Comments"}).Apply(doc, element(t, doc, 1)); !errors.Is(outcome.Reason, nodes.ErrInvalid) {
		t.Error("no source should fail")
	}
}

func TestSetParameterOutcomes(t *testing.T) {
	doc := newMutationsDocument(t)
	wall := element(t, doc, 1)

	expectations := []struct {
		mutation mutations.SetParameter
		status   nodes.Status
		reason   error
	}{
		{mutations.SetParameter{Parameter: "Material", Value: nodes.NewStringValue("Brick")}, nodes.Applied, nil},
		{mutations.SetParameter{Parameter: "Material", Value: nodes.NewStringValue("Brick")}, nodes.SkippedNoop, nil},
		{mutations.SetParameter{Parameter: "Missing", Value: nodes.NewStringValue("x")}, nodes.Failed, nodes.ErrNotFound},
		{mutations.SetParameter{Parameter: "Area", Value: nodes.NewDoubleValue(3)}, nodes.Failed, nodes.ErrReadOnly},
		{mutations.SetParameter{Parameter: "Material", Value: nodes.NewIntegerValue(3)}, nodes.Failed, nodes.ErrInvalid},
		{mutations.SetParameterIfEmpty("Comments", nodes.NewStringValue("checked")), nodes.Applied, nil},
		{mutations.SetParameterIfEmpty("Comments", nodes.NewStringValue("again")), nodes.SkippedNoop, nil},
	}

	for index, expected := range expectations {
		outcome := expected.mutation.Apply(doc, wall)
		if outcome.Status != expected.status {
			t.Errorf("%d: expected %s, got %s (%s)", index, expected.status, outcome.Status, outcome.Detail)
		} else if expected.reason != nil && !errors.Is(outcome.Reason, expected.reason) {
			t.Errorf("%d: unexpected reason %v", index, outcome.Reason)
		}
	}

	if p, _ := doc.GetParameter(1, "Comments"); !p.Value.Equals(nodes.NewStringValue("checked")) {
		t.Error("set if empty should not overwrite")
	}
}

func TestOverrideOnLockedView(t *testing.T) {
	doc := newMutationsDocument(t)
	template := nodes.NewView(200, "Plans", nodes.ViewFloorPlan)
	template.IsTemplate = true
	doc.AddView(template)

	settings := nodes.NoOverrides()
	settings.Halftone = true
	override := mutations.OverrideElement{View: 100, Settings: settings}

	if outcome := override.Apply(doc, element(t, doc, 1)); outcome.Status != nodes.Applied {
		t.Errorf("expected applied, got %s", outcome.Status)
	} else if outcome := override.Apply(doc, element(t, doc, 1)); outcome.Status != nodes.SkippedNoop {
		t.Errorf("expected skipped, got %s", outcome.Status)
	}

	if err := doc.ApplyTemplate(100, 200, true); err != nil {
		t.Fatal(err)
	}

	for _, mutation := range []mutations.Mutation{override, mutations.OverrideCategory{View: 100, Settings: settings}} {
		outcome := mutation.Apply(doc, element(t, doc, 2))
		if outcome.Status != nodes.Failed || !errors.Is(outcome.Reason, nodes.ErrHostRejected) {
			t.Errorf("%s: expected host rejection, got %s", mutation.Name(), outcome.Status)
		}
	}

	missing := mutations.OverrideElement{View: 999, Settings: settings}
	if outcome := missing.Apply(doc, element(t, doc, 1)); !errors.Is(outcome.Reason, nodes.ErrNotFound) {
		t.Error("missing view should fail")
	}
}

func TestAttachFilterMutation(t *testing.T) {
	doc := newMutationsDocument(t)
	doc.AddView(nodes.NewView(101, "Level 2", nodes.ViewFloorPlan))
	doc.AddFilter(graphs.FilterRecord{Id: 300, Name: "Concrete", Categories: []nodes.CategoryId{WALLS}})
	filter, err := filters.New(doc, 300, "Concrete", []nodes.CategoryId{WALLS}, predicates.ParameterEquals("Material", nodes.NewStringValue("Concrete"), false))
	if err != nil {
		t.Fatal(err)
	}

	views := queries.Query(doc, nodes.ElementsInCategory(graphs.ViewCategory), predicates.And())
	applier := mutations.NewApplier(nil)
	if summary := applier.Run(doc, views, mutations.AttachFilter{Filter: filter}); summary.Applied != 2 {
		t.Errorf("expected 2 views, got %d", summary.Applied)
	}

	if summary := applier.Run(doc, views, mutations.DetachFilter{Filter: filter}); summary.Applied != 2 {
		t.Errorf("expected 2 views, got %d", summary.Applied)
	} else if result := filters.Sweep(doc); len(result.Unused) != 1 {
		t.Error("filter should be unused")
	}
}

// panicking panics on one element
type panicking struct {
	on nodes.ElementId
}

func (p panicking) Name() string {
	return "panicking"
}

func (p panicking) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if element.Id == p.on {
		panic("host failure")
	}

	return nodes.AppliedOutcome(element.Id, "ok")
}

func TestApplierContinuesAfterFailure(t *testing.T) {
	doc := newMutationsDocument(t)
	core, logs := observer.New(zapcore.DebugLevel)
	applier := mutations.NewApplier(zap.New(core))
	matches := queries.Query(doc, nodes.ElementsInCategory(WALLS), predicates.And())

	summary := applier.Run(doc, matches, panicking{on: 2})
	if summary.Err != nil {
		t.Error(summary.Err)
	} else if summary.Total() != 3 || summary.Applied != 2 || summary.Failed != 1 {
		t.Errorf("unexpected summary %d applied %d failed", summary.Applied, summary.Failed)
	}

	failures := summary.Failures()
	if len(failures) != 1 || failures[0].Element != 2 || !errors.Is(failures[0].Reason, nodes.ErrHostRejected) {
		t.Error("failure mismatch")
	}

	if len(summary.RunId) == 0 || summary.Mutation != "panicking" {
		t.Error("summary identification mismatch")
	}

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %d", len(warnings))
	} else if warnings[0].ContextMap()["element"] != int64(2) {
		t.Error("warning should name the element")
	}

	if logs.FilterMessage("mutation done").Len() != 1 {
		t.Error("missing summary log")
	}
}

func TestApplierQueryFailure(t *testing.T) {
	doc := newMutationsDocument(t)
	matches := queries.Query(doc, nodes.ElementsInView(999), predicates.And())
	summary := mutations.NewApplier(zap.NewNop()).Run(doc, matches, mutations.Rename{Candidate: mutations.Fixed("x")})
	if !errors.Is(summary.Err, nodes.ErrNotFound) || summary.Total() != 0 {
		t.Error("unknown view should fail the whole run")
	}

	if summary := mutations.NewApplier(nil).Run(doc, matches, nil); !errors.Is(summary.Err, nodes.ErrNilValue) {
		t.Error("nil mutation should fail")
	}
}
