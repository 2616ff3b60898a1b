package cli

import (
	"fmt"
	"strings"

	"jobfinder/internal/common"
	"jobfinder/internal/types"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-title]",
	Short: "Search for jobs by title without a resume",
	Long: `Query the configured job-search providers directly with a job title,
skipping resume extraction. Useful for quick manual searches.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if jobsConfig.OutputFormat == "" {
			jobsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(jobsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runJobs,
}

var (
	jobsConfig     common.CommandConfig
	jobsLocation   string
	jobsExperience string
	jobsCategory   string
	jobsLimit      int
)

func init() {
	jobsCmd.Flags().StringVarP(&jobsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	jobsCmd.Flags().StringVar(&jobsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	jobsCmd.Flags().StringVarP(&jobsLocation, "location", "l", "", "Target location (default from config)")
	jobsCmd.Flags().StringVar(&jobsExperience, "experience", "", "Experience level, e.g. junior, mid, senior")
	jobsCmd.Flags().StringVar(&jobsCategory, "category", "", "Job category, e.g. engineering")
	jobsCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 0, "Maximum number of listings (default from config)")
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := cfg.ResolveVaultSecrets(); err != nil {
		return fmt.Errorf("failed to resolve vault secrets: %w", err)
	}

	limit, err := resolveLimit(cfg, jobsLimit)
	if err != nil {
		return err
	}
	if err := common.ValidateLocation(jobsLocation); err != nil {
		return err
	}

	orchestrator, cleanup, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	query := types.SearchQuery{
		JobTitle:   strings.Join(args, " "),
		Location:   jobsLocation,
		Experience: jobsExperience,
		Category:   jobsCategory,
	}

	logger.Info("Starting manual job search",
		"title", query.JobTitle,
		"location", query.Location,
		"limit", limit)

	result, err := orchestrator.SearchManual(cmd.Context(), query, limit)
	if err != nil {
		return fmt.Errorf("job search failed: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(result, jobsConfig); err != nil {
		return err
	}
	logger.Info("Job search completed successfully", "listings", len(result.Listings))
	return nil
}
