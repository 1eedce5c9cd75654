package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zefrenchwan/docfilters.git/queries"
	"github.com/zefrenchwan/docfilters.git/reports"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// newQueryCommand creates the query command
func newQueryCommand(env *environment) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "query <request file>",
		Short: "Export elements matching a query",
		Long: `Reads a request (scope, predicate and columns) and exports matching elements,
by ascending id, one row per element.`,
		Example: `  # Concrete walls as CSV
  docfilters query walls.yaml --snapshot model.yaml --name concrete_walls.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, errLoad := loadDocument(cmd.Context(), env)
			if errLoad != nil {
				return errLoad
			}

			defer loaded.close()

			request, errRequest := storage.ReadRequest(args[0])
			if errRequest != nil {
				return errRequest
			}

			matches, errQuery := buildMatches(loaded, request)
			if errQuery != nil {
				return errQuery
			}

			elements, errCollect := matches.Collect()
			if errCollect != nil {
				return errCollect
			}

			format := env.cfg.ReportFormat()
			report := reports.FromElements(loaded.document, elements, format, reportName(name, "query_results", format), request.Columns...)
			return writeReport(env, cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "suggested file name of the report")
	return cmd
}

// buildMatches returns the query of the request
func buildMatches(loaded *loadedDocument, request storage.RequestDTO) (queries.Matches, error) {
	scope, errScope := storage.BuildScope(loaded.document, request.Scope)
	if errScope != nil {
		return queries.Matches{}, errScope
	}

	predicate, errPredicate := storage.BuildPredicate(loaded.document, request.Predicate)
	if errPredicate != nil {
		return queries.Matches{}, errPredicate
	}

	return queries.Query(loaded.document, scope, predicate), nil
}

// reportName returns name, or base with the extension of format
func reportName(name, base string, format reports.Format) string {
	if len(name) != 0 {
		return name
	}

	return fmt.Sprintf("%s.%s", base, format.Extension())
}
