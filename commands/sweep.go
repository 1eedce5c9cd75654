package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/reports"
)

// newSweepCommand creates the sweep command
func newSweepCommand(env *environment) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Export filters no view or template uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, errLoad := loadDocument(cmd.Context(), env)
			if errLoad != nil {
				return errLoad
			}

			defer loaded.close()

			result := filters.Sweep(loaded.document)
			for _, view := range result.Unreadable {
				env.logger.Warn("filters of view cannot be read", zap.Int64("view", int64(view)))
			}

			names := make(map[nodes.ElementId]string)
			for _, id := range result.Unused {
				if record, found := loaded.document.Filter(id); found {
					names[id] = record.Name
				}
			}

			format := env.cfg.ReportFormat()
			report := reports.FromSweep(result, names, format, reportName(name, "unused_filters", format))
			return writeReport(env, cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "suggested file name of the report")
	return cmd
}
