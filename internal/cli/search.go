package cli

import (
	"fmt"
	"path/filepath"

	"jobfinder/internal/common"
	"jobfinder/internal/types"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [resume-file]",
	Short: "Find jobs matching a resume",
	Long: `Extract a candidate profile from a resume file (PDF or DOCX), detect the
most likely job title, and query the configured job-search providers.
Listings from all providers are deduplicated and printed in the chosen format.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if searchConfig.OutputFormat == "" {
			searchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(searchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSearch,
}

var (
	searchConfig      common.CommandConfig
	searchLocation    string
	searchLimit       int
	searchProfileOnly bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	searchCmd.Flags().StringVar(&searchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Target location (default from config)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of listings (default from config)")
	searchCmd.Flags().BoolVar(&searchProfileOnly, "profile-only", false, "Print the extracted profile without querying providers")

	// Add completion for format flag
	_ = searchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := cfg.ResolveVaultSecrets(); err != nil {
		return fmt.Errorf("failed to resolve vault secrets: %w", err)
	}

	limit, err := resolveLimit(cfg, searchLimit)
	if err != nil {
		return err
	}
	if err := common.ValidateLocation(searchLocation); err != nil {
		return err
	}

	fileProcessor := common.NewFileProcessor(logger)
	content, err := fileProcessor.ValidateAndReadResume(args[0])
	if err != nil {
		return err
	}

	logger.Info("Starting resume search",
		"file", args[0],
		"size", len(content),
		"location", searchLocation,
		"limit", limit)

	orchestrator, cleanup, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	doc := types.ResumeDocument{
		Bytes:    content,
		Filename: filepath.Base(args[0]),
	}

	outputHandler := common.NewOutputHandler(logger)

	if searchProfileOnly {
		profile, err := orchestrator.ExtractProfile(doc)
		if err != nil {
			return fmt.Errorf("profile extraction failed: %w", err)
		}
		if err := outputHandler.HandleOutput(profile, searchConfig); err != nil {
			return err
		}
		logger.Info("Profile extraction completed successfully",
			"title", profile.JobTitle,
			"skills", len(profile.Skills))
		return nil
	}

	result, err := orchestrator.SearchByResume(cmd.Context(), doc, searchLocation, limit)
	if err != nil {
		return fmt.Errorf("resume search failed: %w", err)
	}

	if err := outputHandler.HandleOutput(result, searchConfig); err != nil {
		return err
	}
	logger.Info("Resume search completed successfully",
		"title", result.Profile.JobTitle,
		"listings", len(result.Listings))
	return nil
}
