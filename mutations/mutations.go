package mutations

import "github.com/zefrenchwan/docfilters.git/nodes"

// Mutation changes one element at a time.
// Applying a mutation twice changes nothing the second time and returns SkippedNoop.
type Mutation interface {
	// Name describes the mutation for logs and reports
	Name() string
	// Apply mutates element in doc. It returns failures as outcomes, never panics on purpose
	Apply(doc nodes.Document, element nodes.Element) nodes.Outcome
}
