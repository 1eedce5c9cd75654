package serving

import (
	"encoding/json"
	"net/http"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/graphs"
)

// CheckStatusResponse defines json to display when asking for status
type CheckStatusResponse struct {
	// Active is true when server is up
	Active bool `json:"active"`
	// Description is more about this serving instance
	Description string `json:"description,omitempty"`
	// Document is the id of the served document
	Document string `json:"document,omitempty"`
}

// checkStatusHandler deals with a request to test status on a server
func checkStatusHandler(wrapper ServiceParameters, w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	result := CheckStatusResponse{
		Active:      true,
		Description: "Document filters server",
	}

	if wrapper.Workspace != nil {
		wrapper.Workspace.Read(func(doc *graphs.Document, _ []filters.Filter) error {
			result.Document = doc.Id
			return nil
		})
	}

	json.NewEncoder(w).Encode(result)
	return nil
}
