package predicates_test

import (
	"math"
	"slices"
	"testing"

	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

const WALLS nodes.CategoryId = 10

func newWall(id nodes.ElementId, material string, width float64) nodes.Element {
	element := nodes.NewElement(id, WALLS, "Wall", "")
	element.SetParameter(nodes.NewParameter("Material", nodes.NewStringValue(material)))
	element.SetParameter(nodes.NewParameter("Width", nodes.NewDoubleValue(width)))
	return element
}

func TestLeaves(t *testing.T) {
	wall := newWall(1, "Concrete", 0.2)

	if !predicates.Evaluate(predicates.CategoryIs(WALLS), wall) {
		t.Error("category mismatch")
	} else if predicates.Evaluate(predicates.CategoryIs(20), wall) {
		t.Error("category mismatch")
	}

	if !predicates.Evaluate(predicates.ParameterEquals("Material", nodes.NewStringValue("concrete"), false), wall) {
		t.Error("case insensitive equality failed")
	} else if predicates.Evaluate(predicates.ParameterEquals("Material", nodes.NewStringValue("concrete"), true), wall) {
		t.Error("case sensitive equality should fail")
	}

	if !predicates.Evaluate(predicates.ParameterContains("Material", "CRET", false), wall) {
		t.Error("contains mismatch")
	} else if !predicates.Evaluate(predicates.ParameterBeginsWith("Material", "Con", true), wall) {
		t.Error("begins with mismatch")
	} else if predicates.Evaluate(predicates.ParameterBeginsWith("Material", "crete", false), wall) {
		t.Error("begins with mismatch")
	}

	if predicates.Evaluate(predicates.ParameterExists("Missing"), wall) {
		t.Error("missing parameter should not exist")
	} else if predicates.Evaluate(predicates.ParameterIsEmpty("Missing"), wall) {
		t.Error("missing parameter is not empty, it is absent")
	}
}

func TestKindMismatchIsFalse(t *testing.T) {
	wall := newWall(1, "Concrete", 0.2)
	// Width is a double, never equal to a string
	if predicates.Evaluate(predicates.ParameterEquals("Width", nodes.NewStringValue("0.2"), false), wall) {
		t.Error("kind mismatch should be false")
	}

	if predicates.Evaluate(predicates.NumericCompare("Material", predicates.Equal, 0), wall) {
		t.Error("strings are not numbers")
	} else if predicates.Evaluate(predicates.ParameterContains("Width", "0", false), wall) {
		t.Error("doubles are not strings")
	}
}

func TestNumericCompare(t *testing.T) {
	wall := newWall(1, "Concrete", 0.1+0.2)

	if !predicates.Evaluate(predicates.NumericCompare("Width", predicates.Equal, 0.3), wall) {
		t.Error("equality should absorb floating point noise")
	} else if predicates.Evaluate(predicates.NumericCompare("Width", predicates.Less, 0.3), wall) {
		t.Error("noise should not make a value smaller")
	} else if !predicates.Evaluate(predicates.NumericCompare("Width", predicates.LessOrEqual, 0.3), wall) {
		t.Error("less or equal mismatch")
	} else if !predicates.Evaluate(predicates.NumericCompare("Width", predicates.Greater, 0.25), wall) {
		t.Error("greater mismatch")
	}

	if !predicates.Evaluate(predicates.NumericCompareWithin("Width", predicates.Equal, 0.35, 0.1), wall) {
		t.Error("explicit epsilon mismatch")
	}

	undefined := newWall(2, "Concrete", math.NaN())
	for _, operator := range []predicates.Operator{predicates.Less, predicates.LessOrEqual, predicates.Equal, predicates.GreaterOrEqual, predicates.Greater} {
		if predicates.Evaluate(predicates.NumericCompare("Width", operator, 1), undefined) {
			t.Errorf("NaN should not match %s", operator)
		} else if predicates.Evaluate(predicates.NumericCompare("Width", operator, math.NaN()), wall) {
			t.Errorf("NaN bound should not match %s", operator)
		}
	}

	if operator, err := predicates.ParseOperator(">="); err != nil || operator != predicates.GreaterOrEqual {
		t.Error("operator parsing mismatch")
	} else if _, err := predicates.ParseOperator("<>"); err == nil {
		t.Error("unknown operator should fail")
	}
}

func TestCombinators(t *testing.T) {
	concrete := predicates.ParameterEquals("Material", nodes.NewStringValue("Concrete"), false)
	thick := predicates.NumericCompare("Width", predicates.GreaterOrEqual, 0.3)
	walls := []nodes.Element{
		newWall(1, "Concrete", 0.2),
		newWall(2, "Concrete", 0.4),
		newWall(3, "Wood", 0.4),
		newWall(4, "Wood", 0.1),
	}

	if predicates.Evaluate(predicates.Or(), walls[0]) {
		t.Error("empty or should be false")
	} else if !predicates.Evaluate(predicates.And(), walls[0]) {
		t.Error("empty and should be true")
	}

	for _, wall := range walls {
		a, b := predicates.Evaluate(concrete, wall), predicates.Evaluate(thick, wall)
		if predicates.Evaluate(predicates.And(concrete, thick), wall) != (a && b) {
			t.Errorf("and mismatch for %d", wall.Id)
		}

		if predicates.Evaluate(predicates.Or(concrete, thick), wall) != (a || b) {
			t.Errorf("or mismatch for %d", wall.Id)
		}

		if predicates.Evaluate(predicates.Not(predicates.Not(concrete)), wall) != a {
			t.Errorf("double negation mismatch for %d", wall.Id)
		}

		// De Morgan
		left := predicates.Evaluate(predicates.Not(predicates.And(concrete, thick)), wall)
		right := predicates.Evaluate(predicates.Or(predicates.Not(concrete), predicates.Not(thick)), wall)
		if left != right {
			t.Errorf("De Morgan mismatch for %d", wall.Id)
		}
	}

	if predicates.Evaluate(nil, walls[0]) {
		t.Error("nil predicate should match nothing")
	}
}

func TestReferencedParameters(t *testing.T) {
	predicate := predicates.And(
		predicates.ParameterEquals("Material", nodes.NewStringValue("Concrete"), false),
		predicates.Or(
			predicates.NumericCompare("Width", predicates.Greater, 0.2),
			predicates.Not(predicates.ParameterExists("Material")),
		),
		predicates.CategoryIs(WALLS),
	)

	names := predicates.ReferencedParameters(predicate)
	if !slices.Equal(names, []string{"Material", "Width"}) {
		t.Errorf("expected Material and Width, got %v", names)
	}

	if predicates.ReferencedParameters(nil) != nil {
		t.Error("nil predicate reads nothing")
	}
}

func TestResolversOrder(t *testing.T) {
	wall := nodes.NewElement(1, WALLS, "Wall", "Wall-1")
	wall.SetParameter(nodes.NewParameter("Comments", nodes.NewStringValue("user")))
	wall.SetParameter(nodes.NewParameter("Comments", nodes.NewStringValue("host")).AsBuiltIn())
	wall.SetTypeParameters([]nodes.Parameter{nodes.NewParameter("Function", nodes.NewStringValue("Exterior"))})

	if p, found := predicates.Resolve(predicates.DefaultResolvers(), wall, "Comments"); !found {
		t.Error("parameter not found")
	} else if text, _ := p.Value.AsString(); text != "host" {
		t.Error("built-in parameter should win")
	}

	if !predicates.Evaluate(predicates.ParameterEquals("Function", nodes.NewStringValue("exterior"), false), wall) {
		t.Error("type parameters should be resolved")
	}

	instanceOnly := predicates.NewEvaluator(predicates.InstanceResolver)
	predicate := predicates.ParameterEquals("Comments", nodes.NewStringValue("user"), true)
	if !instanceOnly.Evaluate(predicate, wall) {
		t.Error("explicit resolvers should be used")
	} else if predicates.Evaluate(predicate, wall) {
		t.Error("default resolvers should find the built-in first")
	}
}

func TestPhaseStatusAnd(t *testing.T) {
	const P1, P2 nodes.ElementId = 501, 502
	phases := nodes.NewPhaseSequence([]nodes.Phase{
		{Id: P1, Name: "Existing", Sequence: 1},
		{Id: P2, Name: "New Construction", Sequence: 2},
	})

	withPhases := func(id nodes.ElementId, created, demolished nodes.ElementId) nodes.Element {
		element := newWall(id, "Concrete", 0.2)
		if created != nodes.InvalidElementId {
			element.SetParameter(nodes.NewParameter(nodes.BuiltInPhaseCreated, nodes.NewElementRefValue(created)).AsBuiltIn())
		}

		if demolished != nodes.InvalidElementId {
			element.SetParameter(nodes.NewParameter(nodes.BuiltInPhaseDemolished, nodes.NewElementRefValue(demolished)).AsBuiltIn())
		}

		return element
	}

	elements := []nodes.Element{
		withPhases(1, P1, P2),
		withPhases(2, P1, nodes.InvalidElementId),
		withPhases(3, P2, P2),
		withPhases(4, P1, P1),
		withPhases(5, nodes.InvalidElementId, nodes.InvalidElementId),
	}

	predicate := predicates.And(
		predicates.PhaseStatus(phases, P1, nodes.PhaseNew),
		predicates.PhaseStatus(phases, P2, nodes.PhaseDemolished),
	)

	var matches []nodes.ElementId
	for _, element := range elements {
		if predicates.Evaluate(predicate, element) {
			matches = append(matches, element.Id)
		}
	}

	if !slices.Equal(matches, []nodes.ElementId{1}) {
		t.Errorf("expected only element 1, got %v", matches)
	}

	// element 2 exists in the second phase, element 4 is temporary
	if !predicates.Evaluate(predicates.PhaseStatus(phases, P2, nodes.PhaseExisting), elements[1]) {
		t.Error("existing mismatch")
	} else if !predicates.Evaluate(predicates.PhaseStatus(phases, P1, nodes.PhaseTemporary), elements[3]) {
		t.Error("temporary mismatch")
	}

	if predicates.Evaluate(predicates.PhaseStatus(phases, 999, nodes.PhaseNew), elements[0]) {
		t.Error("unknown phase should match nothing")
	}
}
