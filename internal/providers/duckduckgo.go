package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

const ddgSource = "DuckDuckGo"

// DuckDuckGoAdapter scrapes the HTML search endpoint with a site-restricted
// query over the configured job-board domains. The source exposes only
// title, snippet and link, so company and location carry an explicit
// placeholder.
type DuckDuckGoAdapter struct {
	cfg        config.DuckDuckGoConfig
	httpClient *http.Client
	breaker    *Breaker
	logger     *errors.Logger
}

// NewDuckDuckGoAdapter creates the web-search adapter. A nil httpClient
// selects a plain default client.
func NewDuckDuckGoAdapter(cfg config.DuckDuckGoConfig, httpClient *http.Client, logger *errors.Logger) *DuckDuckGoAdapter {
	return &DuckDuckGoAdapter{
		cfg:        cfg,
		httpClient: httpClientOrDefault(httpClient),
		breaker:    NewBreaker("duckduckgo", cfg.CircuitBreaker, logger),
		logger:     logger,
	}
}

func (a *DuckDuckGoAdapter) Name() string { return ddgSource }

// Stats reports circuit breaker state for the stats endpoint.
func (a *DuckDuckGoAdapter) Stats() map[string]any {
	return a.breaker.GetStats()
}

// Search runs a site-restricted text search and maps each hit into the
// common listing shape.
func (a *DuckDuckGoAdapter) Search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error) {
	return a.breaker.Execute(func() ([]types.JobListing, error) {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		return a.search(ctx, query)
	})
}

func (a *DuckDuckGoAdapter) search(ctx context.Context, query types.SearchQuery) ([]types.JobListing, error) {
	sites := make([]string, len(a.cfg.Domains))
	for i, d := range a.cfg.Domains {
		sites[i] = "site:" + d
	}
	q := fmt.Sprintf("%s jobs in %s (%s)", query.JobTitle, query.Location, strings.Join(sites, " OR "))

	values := url.Values{}
	values.Set("q", q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed, "duckduckgo: build request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; jobfinder/1.0)")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, requestFailure("duckduckgo", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed,
			fmt.Sprintf("duckduckgo: search returned status %d", resp.StatusCode), nil).
			WithContext("status", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed, "duckduckgo: parse response", err)
	}

	hits := parseDDGResults(doc)

	listings := make([]types.JobListing, 0, a.cfg.MaxResults)
	for _, hit := range hits {
		if len(listings) >= a.cfg.MaxResults {
			break
		}
		link := resolveDDGLink(hit.href)
		if link == "" {
			continue
		}
		if a.cfg.EnglishOnly && !isASCII(hit.title+hit.body) {
			continue
		}
		if !a.matchesDomain(link) {
			continue
		}
		listings = append(listings, types.JobListing{
			Title:       hit.title,
			Company:     "N/A",
			Location:    "N/A",
			Description: snippet(hit.body),
			ApplyLink:   link,
			Source:      ddgSource,
		})
	}
	return listings, nil
}

// matchesDomain reports whether link points at one of the configured
// job-board hosts.
func (a *DuckDuckGoAdapter) matchesDomain(link string) bool {
	for _, d := range a.cfg.Domains {
		host := d
		if i := strings.IndexByte(host, '/'); i >= 0 {
			host = host[:i]
		}
		if strings.Contains(link, host) {
			return true
		}
	}
	return false
}

type ddgHit struct {
	title string
	href  string
	body  string
}

// parseDDGResults extracts (title, href, snippet) triples from the HTML
// results page. A result anchor carries class result__a; the snippet node
// carries class result__snippet and follows in document order.
func parseDDGResults(doc *html.Node) []ddgHit {
	var hits []ddgHit
	var current *ddgHit

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if current != nil {
					hits = append(hits, *current)
				}
				current = &ddgHit{
					title: strings.TrimSpace(nodeText(n)),
					href:  attr(n, "href"),
				}
			case hasClass(n, "result__snippet"):
				if current != nil && current.body == "" {
					current.body = strings.TrimSpace(nodeText(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil {
		hits = append(hits, *current)
	}
	return hits
}

// resolveDDGLink unwraps the redirect URL the results page links through.
// The real destination travels in the uddg query parameter.
func resolveDDGLink(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
