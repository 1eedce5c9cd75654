package queries_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
	"github.com/zefrenchwan/docfilters.git/queries"
)

const WALLS nodes.CategoryId = 10

// newWallsDocument returns walls 3, 1 and 2, walls 1 and 3 are concrete
func newWallsDocument(t *testing.T) *graphs.Document {
	doc := graphs.NewDocumentWithId("doc", "Walls")
	doc.AddCategory(nodes.Category{Id: WALLS, Name: "Walls"})
	for id, material := range map[nodes.ElementId]string{3: "Concrete", 1: "Concrete", 2: "Wood"} {
		wall := nodes.NewElement(id, WALLS, "Wall", "")
		wall.SetParameter(nodes.NewParameter("Material", nodes.NewStringValue(material)))
		if err := doc.AddElement(wall); err != nil {
			t.Fatal(err)
		}
	}

	door := nodes.NewElement(4, 20, "Door", "Door-1")
	door.SetParameter(nodes.NewParameter("Material", nodes.NewStringValue("Concrete")))
	if err := doc.AddElement(door); err != nil {
		t.Fatal(err)
	}

	return doc
}

func TestQueryConcreteWalls(t *testing.T) {
	doc := newWallsDocument(t)
	concrete := predicates.ParameterEquals("Material", nodes.NewStringValue("concrete"), false)

	matches := queries.Query(doc, nodes.ElementsInCategory(WALLS), concrete)
	if ids, err := matches.Ids(); err != nil {
		t.Error(err)
	} else if !slices.Equal(ids, []nodes.ElementId{1, 3}) {
		t.Errorf("expected walls 1 and 3, got %v", ids)
	}

	if count, err := matches.Count(); err != nil || count != 2 {
		t.Errorf("expected 2 walls, got %d", count)
	}

	if first, found, err := matches.First(); err != nil || !found || first.Id != 1 {
		t.Error("first match mismatch")
	}

	// the door matches the predicate, not the scope
	if ids, _ := queries.Query(doc, nodes.AllElements(), concrete).Ids(); !slices.Equal(ids, []nodes.ElementId{1, 3, 4}) {
		t.Errorf("unexpected matches %v", ids)
	}
}

func TestQueryNoMatch(t *testing.T) {
	doc := newWallsDocument(t)
	matches := queries.Query(doc, nodes.ElementsInCategory(WALLS), predicates.Or())
	if elements, err := matches.Collect(); err != nil {
		t.Error(err)
	} else if len(elements) != 0 {
		t.Error("empty or matches nothing")
	}

	if _, found, err := matches.First(); found || err != nil {
		t.Error("first of nothing should not be found")
	}
}

func TestQueryUnknownView(t *testing.T) {
	doc := newWallsDocument(t)
	matches := queries.Query(doc, nodes.ElementsInView(999), predicates.And())
	if _, err := matches.Ids(); !errors.Is(err, nodes.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if _, _, err := matches.First(); !errors.Is(err, nodes.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if _, err := queries.Query(nil, nodes.AllElements(), predicates.And()).Count(); err == nil {
		t.Error("nil document should fail")
	}
}

func TestQueryIsLazy(t *testing.T) {
	doc := newWallsDocument(t)
	concrete := predicates.ParameterEquals("Material", nodes.NewStringValue("Concrete"), true)
	matches := queries.Query(doc, nodes.ElementsInCategory(WALLS), concrete)

	// change made after the query is built
	if err := doc.SetParameter(2, "Material", nodes.NewStringValue("Concrete")); err != nil {
		t.Fatal(err)
	}

	if count, _ := matches.Count(); count != 3 {
		t.Errorf("expected 3 walls, got %d", count)
	}

	// change made while iterating, on an element not read yet
	var seen []nodes.ElementId
	for element, err := range matches.All() {
		if err != nil {
			t.Fatal(err)
		}

		seen = append(seen, element.Id)
		if element.Id == 1 {
			doc.SetParameter(3, "Material", nodes.NewStringValue("Wood"))
		}
	}

	if !slices.Equal(seen, []nodes.ElementId{1, 2}) {
		t.Errorf("writes should be visible while iterating, got %v", seen)
	}
}

func TestQueryStopsEarly(t *testing.T) {
	doc := newWallsDocument(t)
	count := 0
	for range queries.Query(doc, nodes.AllElements(), predicates.And()).All() {
		count++
		break
	}

	if count != 1 {
		t.Error("iteration should stop")
	}
}
