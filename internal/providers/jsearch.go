package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

const jsearchSource = "RapidAPI"

// JSearchAdapter queries the JSearch jobs API on RapidAPI. Authentication is
// a per-request API key header pair; results arrive as structured job
// records with provider-specific field names.
type JSearchAdapter struct {
	cfg        config.JSearchConfig
	baseURL    string
	httpClient *http.Client
	breaker    *Breaker
	logger     *errors.Logger
}

// NewJSearchAdapter creates the JSearch adapter. A nil httpClient selects a
// plain default client; the per-request timeout comes from configuration.
func NewJSearchAdapter(cfg config.JSearchConfig, httpClient *http.Client, logger *errors.Logger) *JSearchAdapter {
	return &JSearchAdapter{
		cfg:        cfg,
		baseURL:    "https://" + cfg.Host,
		httpClient: httpClientOrDefault(httpClient),
		breaker:    NewBreaker("jsearch", cfg.CircuitBreaker, logger),
		logger:     logger,
	}
}

func (a *JSearchAdapter) Name() string { return jsearchSource }

// Stats reports circuit breaker state for the stats endpoint.
func (a *JSearchAdapter) Stats() map[string]any {
	return a.breaker.GetStats()
}

type jsearchJob struct {
	JobTitle    string `json:"job_title"`
	Employer    string `json:"employer_name"`
	City        string `json:"job_city"`
	State       string `json:"job_state"`
	PostedAtUTC string `json:"job_posted_at_datetime_utc"`
	Description string `json:"job_description"`
	ApplyLink   string `json:"job_apply_link"`
}

type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// Search queries JSearch for "TITLE jobs in LOCATION" and maps the records
// into the common listing shape.
func (a *JSearchAdapter) Search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error) {
	if a.cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "JSearch API key is not configured", nil).
			WithContext("provider", jsearchSource)
	}

	return a.breaker.Execute(func() ([]types.JobListing, error) {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		return a.search(ctx, query)
	})
}

func (a *JSearchAdapter) search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error) {
	values := url.Values{}
	values.Set("query", fmt.Sprintf("%s jobs in %s", query.JobTitle, query.Location))
	values.Set("page", "1")
	values.Set("num_pages", strconv.Itoa(a.cfg.Pages))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed, "jsearch: build request", err)
	}
	req.Header.Set("x-rapidapi-key", a.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", a.cfg.Host)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, requestFailure("jsearch", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed,
			fmt.Sprintf("jsearch: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body))), nil).
			WithContext("status", resp.StatusCode)
	}

	var payload jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed, "jsearch: decode response", err)
	}

	listings := make([]types.JobListing, 0, len(payload.Data))
	for _, j := range payload.Data {
		listings = append(listings, mapJSearchJob(j))
	}
	return listings, nil
}

func mapJSearchJob(j jsearchJob) types.JobListing {
	var locParts []string
	for _, part := range []string{j.City, j.State} {
		if part != "" {
			locParts = append(locParts, part)
		}
	}
	location := strings.Join(locParts, ", ")
	if location == "" {
		location = "N/A"
	}

	listing := types.JobListing{
		Title:       valueOr(j.JobTitle, "N/A"),
		Company:     valueOr(j.Employer, "N/A"),
		Location:    location,
		Posted:      valueOr(j.PostedAtUTC, "N/A"),
		Description: snippet(j.Description),
		ApplyLink:   valueOr(j.ApplyLink, "#"),
		Source:      jsearchSource,
	}
	return listing
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
