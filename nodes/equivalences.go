package nodes

import "slices"

// AllSameElements returns true if each couple of elements are same, false otherwise
func AllSameElements(elements []Element) bool {
	size := len(elements)
	if size <= 1 {
		return true
	}

	// AreSameElements is an equivalence relation, so we may test only
	// one with all the others instead of each couple.
	previous := elements[0]
	for index := 1; index < size; index++ {
		if !AreSameElements(previous, elements[index]) {
			return false
		}
	}

	return true
}

// AreSameElements returns true if contents (not id, just content) are identical, false otherwise.
// Parameter order does not matter.
func AreSameElements(a, b Element) bool {
	if a.Category != b.Category || a.TypeId != b.TypeId {
		return false
	} else if a.Class != b.Class || a.Name != b.Name {
		return false
	}

	return sameParameters(a.parameters, b.parameters) &&
		sameParameters(a.builtIns, b.builtIns) &&
		sameParameters(a.typeParameters, b.typeParameters)
}

// AreSameParameters returns true for same name, flags and values
func AreSameParameters(a, b Parameter) bool {
	if a.Name != b.Name || a.Kind != b.Kind {
		return false
	} else if a.ReadOnly != b.ReadOnly || a.BuiltIn != b.BuiltIn || a.HasValue != b.HasValue {
		return false
	} else if !a.HasValue {
		return true
	}

	return a.Value.Equals(b.Value)
}

// sameParameters compares parameters by name
func sameParameters(a, b []Parameter) bool {
	if len(a) != len(b) {
		return false
	}

	for _, p := range a {
		index := slices.IndexFunc(b, func(other Parameter) bool { return other.Name == p.Name })
		if index < 0 || !AreSameParameters(p, b[index]) {
			return false
		}
	}

	return true
}
