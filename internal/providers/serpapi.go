package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

const (
	serpSource         = "SerpAPI"
	defaultSerpBaseURL = "https://serpapi.com/search.json"
)

// SerpAPIAdapter queries the Google Jobs vertical through SerpAPI. It is a
// no-op returning an empty result set unless enabled and keyed, so it can
// always sit in the adapter list.
type SerpAPIAdapter struct {
	cfg        config.SerpAPIConfig
	baseURL    string
	httpClient *http.Client
	breaker    *Breaker
	logger     *errors.Logger
}

// NewSerpAPIAdapter creates the jobs-vertical adapter. A nil httpClient
// selects a plain default client.
func NewSerpAPIAdapter(cfg config.SerpAPIConfig, httpClient *http.Client, logger *errors.Logger) *SerpAPIAdapter {
	return &SerpAPIAdapter{
		cfg:        cfg,
		baseURL:    defaultSerpBaseURL,
		httpClient: httpClientOrDefault(httpClient),
		breaker:    NewBreaker("serpapi", cfg.CircuitBreaker, logger),
		logger:     logger,
	}
}

func (a *SerpAPIAdapter) Name() string { return serpSource }

// Enabled reports whether the adapter will issue real requests.
func (a *SerpAPIAdapter) Enabled() bool {
	return a.cfg.Enabled && a.cfg.APIKey != ""
}

// Stats reports circuit breaker state for the stats endpoint.
func (a *SerpAPIAdapter) Stats() map[string]any {
	stats := a.breaker.GetStats()
	stats["configured"] = a.Enabled()
	return stats
}

type serpJob struct {
	Title              string `json:"title"`
	CompanyName        string `json:"company_name"`
	Location           string `json:"location"`
	Description        string `json:"description"`
	DetectedExtensions struct {
		PostedAt string `json:"posted_at"`
	} `json:"detected_extensions"`
	RelatedLinks []struct {
		Link string `json:"link"`
	} `json:"related_links"`
}

type serpResponse struct {
	JobsResults []serpJob `json:"jobs_results"`
}

// Search queries the jobs vertical with title, location, experience level
// and category plus the configured recency filter.
func (a *SerpAPIAdapter) Search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error) {
	if !a.Enabled() {
		return []types.JobListing{}, nil
	}

	return a.breaker.Execute(func() ([]types.JobListing, error) {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		return a.search(ctx, query)
	})
}

func (a *SerpAPIAdapter) search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error) {
	q := strings.TrimSpace(fmt.Sprintf("%s in %s %s %s",
		query.JobTitle, query.Location, query.Experience, query.Category))

	values := url.Values{}
	values.Set("engine", "google_jobs")
	values.Set("q", q)
	values.Set("hl", "en")
	values.Set("api_key", a.cfg.APIKey)
	if a.cfg.Recency != "" {
		values.Set("date_posted", a.cfg.Recency)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed, "serpapi: build request", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, requestFailure("serpapi", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed,
			fmt.Sprintf("serpapi: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body))), nil).
			WithContext("status", resp.StatusCode)
	}

	var payload serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed, "serpapi: decode response", err)
	}

	listings := make([]types.JobListing, 0, len(payload.JobsResults))
	for _, j := range payload.JobsResults {
		link := ""
		if len(j.RelatedLinks) > 0 {
			link = j.RelatedLinks[0].Link
		}
		listings = append(listings, types.JobListing{
			Title:       j.Title,
			Company:     j.CompanyName,
			Location:    j.Location,
			Posted:      j.DetectedExtensions.PostedAt,
			Description: snippet(j.Description),
			ApplyLink:   link,
			Source:      serpSource,
		})
	}
	return listings, nil
}
