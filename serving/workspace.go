package serving

import (
	"context"
	"errors"
	"sync"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// RunRecorder stores the outcomes of mutation runs
type RunRecorder interface {
	RecordRun(ctx context.Context, documentId string, summary mutations.Summary) error
	FindRunOutcomes(ctx context.Context, runId string) ([]storage.OutcomeDTO, error)
}

// Workspace is the document a server works on, with its filters.
// Documents are not safe for concurrent use, so every access goes through Read or Write.
type Workspace struct {
	// mutex serializes accesses to the document
	mutex sync.Mutex
	// document to work on
	document *graphs.Document
	// filters of the document
	filters []filters.Filter
	// applier runs mutations
	applier mutations.Applier
	// recorder, if any, stores runs
	recorder RunRecorder
}

// NewWorkspace returns a workspace over a loaded document.
// Recorder may be nil, runs are then not stored.
func NewWorkspace(document *graphs.Document, known []filters.Filter, applier mutations.Applier, recorder RunRecorder) (*Workspace, error) {
	if document == nil {
		return nil, errors.New("nil document")
	}

	return &Workspace{
		document: document,
		filters:  known,
		applier:  applier,
		recorder: recorder,
	}, nil
}

// Read runs reader with exclusive access to the document
func (w *Workspace) Read(reader func(doc *graphs.Document, known []filters.Filter) error) error {
	if w == nil {
		return errors.New("nil workspace")
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	return reader(w.document, w.filters)
}

// Write runs writer with exclusive access to the document and its applier
func (w *Workspace) Write(writer func(doc *graphs.Document, known []filters.Filter, applier mutations.Applier) error) error {
	if w == nil {
		return errors.New("nil workspace")
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	return writer(w.document, w.filters, w.applier)
}

// Record stores summary if the workspace has a recorder
func (w *Workspace) Record(ctx context.Context, summary mutations.Summary) error {
	if w == nil || w.recorder == nil {
		return nil
	}

	return w.recorder.RecordRun(ctx, w.document.Id, summary)
}

// Outcomes returns the stored outcomes of a run, nil for no recorder
func (w *Workspace) Outcomes(ctx context.Context, runId string) ([]storage.OutcomeDTO, error) {
	if w == nil || w.recorder == nil {
		return nil, nil
	}

	return w.recorder.FindRunOutcomes(ctx, runId)
}
