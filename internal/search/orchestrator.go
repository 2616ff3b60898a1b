package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/extract"
	"jobfinder/internal/providers"
	"jobfinder/internal/types"
)

// Metrics receives provider and aggregation outcomes. A nil Metrics
// disables recording.
type Metrics interface {
	RecordProviderOperation(ctx context.Context, provider string, duration time.Duration, listings int, err error)
	RecordAggregation(ctx context.Context, merged, duplicatesDropped int)
}

// Orchestrator drives a search request through extraction, the provider
// fan-out and aggregation. Provider failures are isolated: each adapter's
// error is collected independently and never fails the whole request.
type Orchestrator struct {
	cfg            config.SearchConfig
	extractor      *extract.FieldExtractor
	resumeAdapters []providers.Adapter
	manualAdapters []providers.Adapter
	aggregator     *Aggregator
	logger         *errors.Logger
	metrics        Metrics
}

// NewOrchestrator creates an orchestrator. resumeAdapters serve
// resume-based searches, manualAdapters serve manual queries.
func NewOrchestrator(
	cfg config.SearchConfig,
	extractor *extract.FieldExtractor,
	resumeAdapters, manualAdapters []providers.Adapter,
	aggregator *Aggregator,
	logger *errors.Logger,
	metrics Metrics,
) *Orchestrator {
	return &Orchestrator{
		cfg:            cfg,
		extractor:      extractor,
		resumeAdapters: resumeAdapters,
		manualAdapters: manualAdapters,
		aggregator:     aggregator,
		logger:         logger,
		metrics:        metrics,
	}
}

// SearchByResume extracts a profile from the uploaded document and fans the
// detected title out to the resume adapters. An empty detected title halts
// the request before any provider call.
func (o *Orchestrator) SearchByResume(ctx context.Context, doc types.ResumeDocument, location string, limit int) (*types.SearchResult, error) {
	profile, err := o.extractor.ExtractProfile(doc)
	if err != nil {
		return nil, err
	}

	if profile.JobTitle == "" {
		return nil, &types.BusinessError{
			Kind:    types.TitleNotDetected,
			Message: "could not detect a job title in the resume",
		}
	}

	if location == "" {
		location = o.cfg.DefaultLocation
	}

	o.logger.Info("resume parsed",
		"title", profile.JobTitle,
		"skills", profile.Skills,
		"location", location)

	query := types.SearchQuery{JobTitle: profile.JobTitle, Location: location}
	result := o.fanOut(ctx, o.resumeAdapters, query, limit)
	result.Profile = profile
	result.Location = location
	return result, nil
}

// ExtractProfile runs resume extraction without querying any provider.
func (o *Orchestrator) ExtractProfile(doc types.ResumeDocument) (types.ExtractedProfile, error) {
	return o.extractor.ExtractProfile(doc)
}

// SearchManual fans a caller-supplied query out to the manual adapters.
func (o *Orchestrator) SearchManual(ctx context.Context, query types.SearchQuery, limit int) (*types.SearchResult, error) {
	if query.JobTitle == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "job title is required", nil)
	}
	if query.Location == "" {
		query.Location = o.cfg.DefaultLocation
	}

	result := o.fanOut(ctx, o.manualAdapters, query, limit)
	result.Location = query.Location
	return result, nil
}

// fanOut queries every adapter concurrently, then merges successful outputs
// in adapter-priority order. Each adapter writes into its own slot, so no
// locking is needed.
func (o *Orchestrator) fanOut(ctx context.Context, adapters []providers.Adapter, query types.SearchQuery, limit int) *types.SearchResult {
	results := make([]providers.Result, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		g.Go(func() error {
			start := time.Now()
			listings, err := adapter.Search(gctx, query)
			duration := time.Since(start)

			if o.metrics != nil {
				o.metrics.RecordProviderOperation(gctx, adapter.Name(), duration, len(listings), err)
			}
			if err != nil {
				o.logger.LogError(err, "provider search failed",
					"provider", adapter.Name(),
					"duration_ms", duration.Milliseconds())
			} else {
				o.logger.Debug("provider search completed",
					"provider", adapter.Name(),
					"listings", len(listings),
					"duration_ms", duration.Milliseconds())
			}

			results[i] = providers.Result{Provider: adapter.Name(), Listings: listings, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	lists := make([][]types.JobListing, 0, len(results))
	providerErrors := make(map[string]string)
	for _, r := range results {
		if r.Err != nil {
			providerErrors[r.Provider] = r.Err.Error()
			continue
		}
		lists = append(lists, r.Listings)
	}

	merged, dropped := o.aggregator.Merge(limit, lists...)
	if o.metrics != nil {
		o.metrics.RecordAggregation(ctx, len(merged), dropped)
	}

	o.logger.Info("search aggregated",
		"providers", len(adapters),
		"failed", len(providerErrors),
		"merged", len(merged),
		"duplicates_dropped", dropped)

	return &types.SearchResult{
		Listings:       merged,
		ProviderErrors: providerErrors,
	}
}
