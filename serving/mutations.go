package serving

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// ApplyResponse is the summary of a mutation run
type ApplyResponse struct {
	RunId    string               `json:"run"`
	Mutation string               `json:"mutation"`
	Applied  int                  `json:"applied"`
	Skipped  int                  `json:"skipped"`
	Failed   int                  `json:"failed"`
	Outcomes []storage.OutcomeDTO `json:"outcomes"`
}

// applyHandler applies the mutation of the request to each match of its query
func applyHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	input, errInput := readRequestBody(r)
	if errInput != nil {
		return errInput
	} else if input.Mutation == nil {
		return NewServiceHttpClientError("expecting mutation")
	}

	var summary mutations.Summary
	errWrite := wrapper.Workspace.Write(func(doc *graphs.Document, known []filters.Filter, applier mutations.Applier) error {
		matches, errQuery := buildQuery(doc, input)
		if errQuery != nil {
			return errQuery
		}

		mutation, errMutation := storage.BuildMutation(doc, known, *input.Mutation)
		if errMutation != nil {
			return BuildApiErrorFromDocumentError(errMutation)
		}

		summary = applier.Run(doc, matches, mutation)
		return BuildApiErrorFromDocumentError(summary.Err)
	})

	if errWrite != nil {
		return errWrite
	}

	user, _ := wrapper.CurrentUser()
	wrapper.Logger.Infow("mutation applied", "user", user, "run", summary.RunId, "mutation", summary.Mutation)

	if err := wrapper.Workspace.Record(wrapper.Ctx, summary); err != nil {
		wrapper.Logger.Errorw("cannot record run", "run", summary.RunId, "error", err)
		return BuildApiErrorFromStorageError(err)
	}

	result := ApplyResponse{
		RunId:    summary.RunId,
		Mutation: summary.Mutation,
		Applied:  summary.Applied,
		Skipped:  summary.Skipped,
		Failed:   summary.Failed,
		Outcomes: make([]storage.OutcomeDTO, 0, len(summary.Outcomes)),
	}

	for _, outcome := range summary.Outcomes {
		result.Outcomes = append(result.Outcomes, storage.SerializeOutcome(outcome))
	}

	json.NewEncoder(w).Encode(result)
	return nil
}

// attachFilterHandler attaches a filter, by name, to a view
func attachFilterHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	return changeViewFilters(wrapper, w, r, filters.Attach)
}

// detachFilterHandler removes a filter, by name, from a view
func detachFilterHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	return changeViewFilters(wrapper, w, r, filters.Detach)
}

// changeViewFilters runs change on the view and filter of the url, and writes the outcome
func changeViewFilters(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request,
	change func(filters.ViewFilters, nodes.ElementId, filters.Filter) nodes.Outcome,
) error {
	defer r.Body.Close()

	viewId, errView := strconv.ParseInt(r.PathValue("viewId"), 10, 64)
	if errView != nil {
		return NewServiceHttpClientError("invalid view id")
	}

	filterName := r.PathValue("filter")
	return wrapper.Workspace.Write(func(doc *graphs.Document, known []filters.Filter, _ mutations.Applier) error {
		filter, errFilter := storage.FindFilter(doc, known, filterName)
		if errFilter != nil {
			return NewServiceNotFoundError("no filter " + filterName)
		}

		outcome := change(doc, nodes.ElementId(viewId), filter)
		if outcome.Status == nodes.Failed {
			return BuildApiErrorFromDocumentError(outcome.Reason)
		}

		json.NewEncoder(w).Encode(storage.SerializeOutcome(outcome))
		return nil
	})
}

// runOutcomesHandler returns the recorded outcomes of a run
func runOutcomesHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	runId := r.PathValue("runId")
	if outcomes, err := wrapper.Workspace.Outcomes(wrapper.Ctx, runId); err != nil {
		return BuildApiErrorFromStorageError(err)
	} else if len(outcomes) == 0 {
		return NewServiceNotFoundError("no run " + runId)
	} else {
		json.NewEncoder(w).Encode(outcomes)
	}

	return nil
}
