package providers

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

// Adapter queries a single job-search source and maps its records into the
// common listing shape. Implementations apply their own request timeout and
// convert every transport or decode failure into a typed error.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error)
	Stats() map[string]any
}

// Result is one adapter's outcome in a concurrent fan-out. Exactly one of
// Listings or Err is meaningful.
type Result struct {
	Provider string
	Listings []types.JobListing
	Err      error
}

// BuildAdapters constructs every configured adapter. The SerpAPI adapter is
// always present so manual searches can route through it, but it returns an
// empty result set unless enabled and keyed.
func BuildAdapters(cfg config.ProvidersConfig, logger *errors.Logger) []Adapter {
	return []Adapter{
		NewJSearchAdapter(cfg.JSearch, nil, logger),
		NewDuckDuckGoAdapter(cfg.DuckDuckGo, nil, logger),
		NewSerpAPIAdapter(cfg.SerpAPI, nil, logger),
	}
}

// snippetLimit matches the listing shape contract: descriptions are cut to
// 200 characters and always end with a period.
const snippetLimit = 200

func snippet(s string) string {
	runes := []rune(s)
	if len(runes) > snippetLimit {
		runes = runes[:snippetLimit]
	}
	return string(runes) + "."
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{}
}

// requestFailure classifies a failed provider request. An exceeded adapter
// deadline is a provider timeout; other timeouts on the wire are network
// timeouts; everything else is a plain network failure.
func requestFailure(provider string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewProviderError(errors.ErrCodeProviderTimeout, provider+": search timed out", err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, provider+": network timeout", err)
	}
	return errors.NewNetworkError(errors.ErrCodeNetworkFailure, provider+": request failed", err)
}
