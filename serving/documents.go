package serving

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/queries"
	"github.com/zefrenchwan/docfilters.git/reports"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// QueryResponse is the result of a query: matching ids and elements, by ascending id
type QueryResponse struct {
	Ids      []int64              `json:"ids"`
	Elements []storage.ElementDTO `json:"elements,omitempty"`
}

// FilterReferenceDTO names a filter
type FilterReferenceDTO struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

// SweepResponse is the result of the unused filters sweep
type SweepResponse struct {
	Unused     []FilterReferenceDTO `json:"unused"`
	Used       []int64              `json:"used"`
	Unreadable []int64              `json:"unreadable_views,omitempty"`
}

// readRequestBody decodes the json body as a request
func readRequestBody(r *http.Request) (storage.RequestDTO, error) {
	var input storage.RequestDTO
	if body, err := io.ReadAll(r.Body); err != nil {
		return input, NewServiceUnprocessableEntityError(err.Error())
	} else if err := json.Unmarshal(body, &input); err != nil {
		return input, NewServiceUnprocessableEntityError(err.Error())
	}

	return input, nil
}

// buildQuery returns the query the request describes
func buildQuery(doc *graphs.Document, input storage.RequestDTO) (queries.Matches, error) {
	scope, errScope := storage.BuildScope(doc, input.Scope)
	if errScope != nil {
		return queries.Matches{}, BuildApiErrorFromDocumentError(errScope)
	}

	predicate, errPredicate := storage.BuildPredicate(doc, input.Predicate)
	if errPredicate != nil {
		return queries.Matches{}, BuildApiErrorFromDocumentError(errPredicate)
	}

	return queries.Query(doc, scope, predicate), nil
}

// loadElementHandler returns, if any, the element matching its id as a json
func loadElementHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	id, errId := strconv.ParseInt(r.PathValue("elementId"), 10, 64)
	if errId != nil {
		return NewServiceHttpClientError("invalid element id")
	}

	return wrapper.Workspace.Read(func(doc *graphs.Document, _ []filters.Filter) error {
		if element, found := doc.Element(nodes.ElementId(id)); !found {
			w.WriteHeader(http.StatusNoContent)
			w.Write([]byte{})
		} else {
			json.NewEncoder(w).Encode(storage.SerializeElement(element))
		}

		return nil
	})
}

// queryHandler runs the query in the body and returns matching elements
func queryHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	input, errInput := readRequestBody(r)
	if errInput != nil {
		return errInput
	}

	return wrapper.Workspace.Read(func(doc *graphs.Document, _ []filters.Filter) error {
		matches, errQuery := buildQuery(doc, input)
		if errQuery != nil {
			return errQuery
		}

		elements, errCollect := matches.Collect()
		if errCollect != nil {
			return BuildApiErrorFromDocumentError(errCollect)
		}

		result := QueryResponse{Ids: make([]int64, 0, len(elements))}
		for _, element := range elements {
			result.Ids = append(result.Ids, int64(element.Id))
			result.Elements = append(result.Elements, storage.SerializeElement(element))
		}

		json.NewEncoder(w).Encode(result)
		return nil
	})
}

// exportHandler runs the query in the body and writes matching elements as a report
func exportHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	format, errFormat := reports.ParseFormat(r.PathValue("format"))
	if errFormat != nil {
		return NewServiceHttpClientError(errFormat.Error())
	}

	filename := r.PathValue("filename")
	input, errInput := readRequestBody(r)
	if errInput != nil {
		return errInput
	}

	return wrapper.Workspace.Read(func(doc *graphs.Document, _ []filters.Filter) error {
		matches, errQuery := buildQuery(doc, input)
		if errQuery != nil {
			return errQuery
		}

		elements, errCollect := matches.Collect()
		if errCollect != nil {
			return BuildApiErrorFromDocumentError(errCollect)
		}

		report := reports.FromElements(doc, elements, format, filename, input.Columns...)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		return report.Write(w)
	})
}

// unusedFiltersHandler returns the filters no view uses
func unusedFiltersHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	return wrapper.Workspace.Read(func(doc *graphs.Document, _ []filters.Filter) error {
		sweep := filters.Sweep(doc)
		result := SweepResponse{
			Unused:     make([]FilterReferenceDTO, 0, len(sweep.Unused)),
			Used:       make([]int64, 0, len(sweep.Used)),
			Unreadable: make([]int64, 0, len(sweep.Unreadable)),
		}

		for _, id := range sweep.Unused {
			record, _ := doc.Filter(id)
			result.Unused = append(result.Unused, FilterReferenceDTO{Id: int64(id), Name: record.Name})
		}

		for _, id := range sweep.Used {
			result.Used = append(result.Used, int64(id))
		}

		for _, id := range sweep.Unreadable {
			result.Unreadable = append(result.Unreadable, int64(id))
		}

		json.NewEncoder(w).Encode(result)
		return nil
	})
}
