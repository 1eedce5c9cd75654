package commands

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/serving"
	"github.com/zefrenchwan/docfilters.git/storage"
)

// newServeCommand creates the serve command
func newServeCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the document over http",
		Long: `Loads the document and serves queries, exports and mutations over http.
Users are checked against the database, so a database url is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(env.cfg.DatabaseURL) == 0 {
				return errors.New("serving needs a database for users")
			}

			loaded, errLoad := loadDocument(cmd.Context(), env)
			if errLoad != nil {
				return errLoad
			}

			defer loaded.close()

			users := loaded.dao
			if users == nil {
				dao, errDao := storage.NewDao(cmd.Context(), env.cfg.DatabaseURL)
				if errDao != nil {
					return errDao
				}

				defer dao.Close()
				users = &dao
			}

			applier := mutations.NewApplier(env.logger)
			var recorder serving.RunRecorder
			if loaded.dao != nil {
				recorder = loaded.dao
			}

			workspace, errWorkspace := serving.NewWorkspace(loaded.document, loaded.filters, applier, recorder)
			if errWorkspace != nil {
				return errWorkspace
			}

			mux := serving.InitService(workspace, users, cmd.Context(), env.logger.Sugar())
			env.logger.Info("serving", zap.String("port", env.cfg.Port), zap.String("document", loaded.document.Id))
			return http.ListenAndServe(env.cfg.Port, mux)
		},
	}
}
