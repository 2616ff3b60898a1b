package cli

import (
	"fmt"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/extract"
	"jobfinder/internal/providers"
	"jobfinder/internal/search"
)

// buildOrchestrator wires the extraction and provider pipeline for one-shot
// CLI commands. The returned cleanup func releases vocabulary watchers.
func buildOrchestrator(cfg *config.Config, logger *errors.Logger) (*search.Orchestrator, func(), error) {
	vocab := extract.NewVocabulary()
	if cfg.Extract.VocabDir != "" {
		if err := vocab.LoadDir(cfg.Extract.VocabDir); err != nil {
			return nil, nil, fmt.Errorf("failed to load vocabulary from %s: %w", cfg.Extract.VocabDir, err)
		}
	}
	cleanup := func() {
		if err := vocab.Close(); err != nil {
			logger.LogError(err, "Failed to close vocabulary")
		}
	}

	extractor := extract.NewFieldExtractor(
		cfg.Extract,
		vocab,
		extract.NewTextExtractor(),
		extract.NewProseTagger(),
		logger,
	)

	adapters := providers.BuildAdapters(cfg.Providers, logger)

	// Manual queries skip the web-scrape adapter; resume searches use all.
	manualAdapters := make([]providers.Adapter, 0, len(adapters))
	for _, a := range adapters {
		if a.Name() != "DuckDuckGo" {
			manualAdapters = append(manualAdapters, a)
		}
	}

	orchestrator := search.NewOrchestrator(
		cfg.Search,
		extractor,
		adapters,
		manualAdapters,
		search.NewAggregator(cfg.Search.NormalizeDedupeKeys),
		logger,
		nil,
	)

	return orchestrator, cleanup, nil
}

// resolveLimit applies the configured default and maximum to a flag value.
func resolveLimit(cfg *config.Config, limit int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("limit must be non-negative")
	}
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}
	if max := cfg.Search.MaxLimit; max > 0 && limit > max {
		limit = max
	}
	return limit, nil
}
