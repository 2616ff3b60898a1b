package cli

import (
	"context"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"

	"github.com/spf13/cobra"
)

// Unexported key types keep context values private to this package.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "jobfinder",
	Short: "A CLI tool for finding jobs that match a resume",
	Long: `Jobfinder extracts a candidate profile from a resume (PDF or DOCX),
detects the most likely job title, and queries multiple job-search providers
concurrently. Results are deduplicated and printed or served over HTTP.`,
}

// Execute runs the root command with config and logger attached to the
// context, where every subcommand can reach them.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
