package mutations

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

// NameFunc computes the name an element should have
type NameFunc func(e nodes.Element) (string, error)

// Fixed always returns name
func Fixed(name string) NameFunc {
	return func(nodes.Element) (string, error) {
		return name, nil
	}
}

// WithPrefix adds prefix to the current name, unless it is already there
func WithPrefix(prefix string) NameFunc {
	return func(e nodes.Element) (string, error) {
		if strings.HasPrefix(e.Name, prefix) {
			return e.Name, nil
		}

		return prefix + e.Name, nil
	}
}

// WithSuffix adds suffix to the current name, unless it is already there
func WithSuffix(suffix string) NameFunc {
	return func(e nodes.Element) (string, error) {
		if strings.HasSuffix(e.Name, suffix) {
			return e.Name, nil
		}

		return e.Name + suffix, nil
	}
}

// Sequential numbers elements in the order it sees them: prefix then start, start+1, ...
// Numbers are padded with zeros to width digits.
// An element keeps its number, so a new Sequential over the same matches gives the same names.
func Sequential(prefix string, start, width int) NameFunc {
	var lock sync.Mutex
	next := start
	numbers := make(map[nodes.ElementId]string)

	return func(e nodes.Element) (string, error) {
		lock.Lock()
		defer lock.Unlock()

		if value, found := numbers[e.Id]; found {
			return value, nil
		}

		value := fmt.Sprintf("%s%0*d", prefix, max(width, 1), next)
		numbers[e.Id] = value
		next++
		return value, nil
	}
}

// placeholder matches {Parameter Name} in templates
var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// FromTemplate replaces each {Parameter} in pattern with the parameter value.
// A missing parameter is an error wrapping ErrNotFound.
func FromTemplate(pattern string) NameFunc {
	return func(e nodes.Element) (string, error) {
		var globalErr error
		result := placeholder.ReplaceAllStringFunc(pattern, func(match string) string {
			name := match[1 : len(match)-1]
			parameter, found := predicates.Resolve(predicates.DefaultResolvers(), e, name)
			if !found || !parameter.HasValue {
				globalErr = errors.Join(globalErr, fmt.Errorf("parameter %q: %w", name, nodes.ErrNotFound))
				return ""
			}

			return parameter.Value.String()
		})

		return result, globalErr
	}
}

// FromParameter uses the value of a parameter as the name
func FromParameter(name string) NameFunc {
	return FromTemplate("{" + name + "}")
}

// Disambiguate returns candidate if no other element of class uses it.
// Otherwise, it appends _1, _2, ... until the name is free.
func Disambiguate(namer nodes.Namer, class, candidate string, except nodes.ElementId) string {
	if !namer.NameTaken(class, candidate, except) {
		return candidate
	}

	for counter := 1; ; counter++ {
		name := fmt.Sprintf("%s_%d", candidate, counter)
		if !namer.NameTaken(class, name, except) {
			return name
		}
	}
}

// disambiguated matches the _N a disambiguation adds
var disambiguated = regexp.MustCompile(`_[0-9]+$`)

// alreadyDisambiguated returns true when name is base_N, base is taken by another element,
// and candidate would keep base as is.
// It means a previous rename already set the name and had to disambiguate it.
func alreadyDisambiguated(namer nodes.Namer, candidate NameFunc, element nodes.Element) bool {
	base := disambiguated.ReplaceAllString(element.Name, "")
	if base == element.Name || len(base) == 0 {
		return false
	} else if !namer.NameTaken(element.Class, base, element.Id) {
		return false
	}

	copied := element
	copied.Name = base
	wanted, err := candidate(copied)
	return err == nil && wanted == base
}

// Rename sets the name of elements, disambiguating collisions
type Rename struct {
	// Candidate computes the wanted name
	Candidate NameFunc
}

// Name describes the mutation
func (r Rename) Name() string {
	return "rename"
}

// Apply renames element. Same name is a no op
func (r Rename) Apply(doc nodes.Document, element nodes.Element) nodes.Outcome {
	if doc == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no document: %w", nodes.ErrNilValue))
	} else if r.Candidate == nil {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("no name function: %w", nodes.ErrInvalid))
	}

	candidate, errCandidate := r.Candidate(element)
	if errCandidate != nil {
		return nodes.FailedOutcome(element.Id, errCandidate)
	} else if len(strings.TrimSpace(candidate)) == 0 {
		return nodes.FailedOutcome(element.Id, fmt.Errorf("empty name for element %d: %w", element.Id, nodes.ErrInvalid))
	}

	name := Disambiguate(doc, element.Class, candidate, element.Id)
	if name == element.Name {
		return nodes.SkippedOutcome(element.Id, fmt.Sprintf("already named %q", name))
	} else if alreadyDisambiguated(doc, r.Candidate, element) {
		return nodes.SkippedOutcome(element.Id, fmt.Sprintf("already named %q", element.Name))
	} else if err := doc.Rename(element.Id, name); err != nil {
		return nodes.FailedOutcome(element.Id, err)
	}

	return nodes.AppliedOutcome(element.Id, fmt.Sprintf("renamed %q to %q", element.Name, name))
}
