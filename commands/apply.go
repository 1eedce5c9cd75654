package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/reports"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// newApplyCommand creates the apply command
func newApplyCommand(env *environment) *cobra.Command {
	var name string
	var save bool
	cmd := &cobra.Command{
		Use:   "apply <request file>",
		Short: "Apply a mutation to elements matching a query",
		Long: `Reads a request (scope, predicate and mutation) and applies the mutation
to each matching element. Failures on an element do not stop the others.
Outcomes are exported, one row per element.`,
		Example: `  # Prefix sheet names, then save the document
  docfilters apply prefix_sheets.yaml --snapshot model.yaml --save`,
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
			} else if request.Mutation == nil {
				return errors.New("request has no mutation")
			}

			matches, errQuery := buildMatches(loaded, request)
			if errQuery != nil {
				return errQuery
			}

			mutation, errMutation := storage.BuildMutation(loaded.document, loaded.filters, *request.Mutation)
			if errMutation != nil {
				return errMutation
			}

			summary := mutations.NewApplier(env.logger).Run(loaded.document, matches, mutation)
			if loaded.dao != nil {
				if err := loaded.dao.RecordRun(cmd.Context(), loaded.document.Id, summary); err != nil {
					env.logger.Error("cannot record run", zap.String("run", summary.RunId), zap.Error(err))
				}
			}

			if summary.Err == nil && save && summary.Applied != 0 {
				if err := loaded.save(cmd.Context(), env); err != nil {
					return err
				}
			}

			format := env.cfg.ReportFormat()
			report := reports.FromSummary(summary, format, reportName(name, "mutation_outcomes", format))
			if err := writeReport(env, cmd.OutOrStdout(), report); err != nil {
				return err
			}

			return summary.Err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "suggested file name of the report")
	cmd.Flags().BoolVar(&save, "save", false, "save the changed document")
	return cmd
}
