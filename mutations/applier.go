package mutations

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/queries"
)

// Summary is the result of a mutation over the matches of a query
type Summary struct {
	// RunId identifies the run in logs and stored reports
	RunId string
	// Mutation is the name of the applied mutation
	Mutation string
	// Outcomes are the outcomes per element, by ascending element id
	Outcomes []nodes.Outcome
	// Applied is the number of applied outcomes
	Applied int
	// Skipped is the number of no op outcomes
	Skipped int
	// Failed is the number of failures
	Failed int
	// Err is set when the query could not run at all
	Err error
}

// add appends an outcome and counts it
func (s *Summary) add(outcome nodes.Outcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Status {
	case nodes.Applied:
		s.Applied++
	case nodes.SkippedNoop:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Total returns the number of processed elements
func (s Summary) Total() int {
	return len(s.Outcomes)
}

// Failures returns the failed outcomes only
func (s Summary) Failures() []nodes.Outcome {
	result := make([]nodes.Outcome, 0, s.Failed)
	for _, outcome := range s.Outcomes {
		if outcome.Status == nodes.Failed {
			result = append(result, outcome)
		}
	}

	return result
}

// Applier runs mutations on query matches.
// A failure on an element never stops the batch.
type Applier struct {
	logger *zap.Logger
}

// NewApplier returns an applier logging with logger, nil for no log
func NewApplier(logger *zap.Logger) Applier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return Applier{logger: logger}
}

// Run applies mutation to each match of the query, in the query order.
// Matches are read lazily, so a mutation on an element is visible when testing the next ones.
func (a Applier) Run(doc nodes.Document, matches queries.Matches, mutation Mutation) Summary {
	logger := a.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	summary := Summary{RunId: uuid.NewString()}
	if mutation == nil {
		summary.Err = fmt.Errorf("no mutation: %w", nodes.ErrNilValue)
		return summary
	}

	summary.Mutation = mutation.Name()
	logger = logger.With(zap.String("run", summary.RunId), zap.String("mutation", summary.Mutation))

	for element, err := range matches.All() {
		if err != nil {
			logger.Error("query failed", zap.Error(err))
			summary.Err = err
			return summary
		}

		outcome := a.applyOne(doc, element, mutation)
		switch outcome.Status {
		case nodes.Failed:
			logger.Warn("mutation failed", zap.Int64("element", int64(element.Id)), zap.Error(outcome.Reason))
		case nodes.Applied:
			logger.Debug("mutation applied", zap.Int64("element", int64(element.Id)), zap.String("detail", outcome.Detail))
		}

		summary.add(outcome)
	}

	logger.Info("mutation done",
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)

	return summary
}

// applyOne applies mutation to element, a panic is a failure of that element only
func (a Applier) applyOne(doc nodes.Document, element nodes.Element, mutation Mutation) (outcome nodes.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nodes.FailedOutcome(element.Id, fmt.Errorf("mutation panic: %v: %w", r, nodes.ErrHostRejected))
		}
	}()

	outcome = mutation.Apply(doc, element)
	// mutations may not bother setting the element
	outcome.Element = element.Id
	return outcome
}
