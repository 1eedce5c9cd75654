package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zefrenchwan/docfilters.git/config"
)

// environment is shared by the commands once flags are parsed
type environment struct {
	// configFile is the explicit config file, if any
	configFile string
	// cfg is the loaded configuration
	cfg *config.Config
	// logger to use, never nil once loaded
	logger *zap.Logger
}

// newLogger returns a production logger, at debug level when verbose
func newLogger(verbose bool) (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	if verbose {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return loggerConfig.Build()
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	env := &environment{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "docfilters",
		Short: "Query, mutate and export elements of a document",
		Long: `docfilters selects elements of a document by composing predicates,
applies idempotent mutations to them, keeps view filters consistent,
and exports results behind EXPORT:: lines.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			cfg, errConfig := config.Load(env.configFile, cmd.Root().PersistentFlags())
			if errConfig != nil {
				return errConfig
			}

			logger, errLogger := newLogger(cfg.Verbose)
			if errLogger != nil {
				return fmt.Errorf("failed to initialize logger: %w", errLogger)
			}

			env.cfg = cfg
			env.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if env.logger != nil {
				_ = env.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&env.configFile, "config", "", "config file (default: ./"+config.DEFAULT_CONFIG_FILE+")")
	rootCmd.PersistentFlags().String("database-url", "", "postgresql url")
	rootCmd.PersistentFlags().String("document", "", "id of the document to load from the database")
	rootCmd.PersistentFlags().String("snapshot", "", "document snapshot file (yaml or json)")
	rootCmd.PersistentFlags().String("port", "", "serving port, as :number")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logs")
	rootCmd.PersistentFlags().StringP("format", "f", "", "report format (CSV|TXT|EXCEL)")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for reports (default: standard output)")

	rootCmd.AddCommand(newQueryCommand(env))
	rootCmd.AddCommand(newApplyCommand(env))
	rootCmd.AddCommand(newSweepCommand(env))
	rootCmd.AddCommand(newServeCommand(env))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	return nil
}
