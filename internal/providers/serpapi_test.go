package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/types"
)

func serpTestConfig() config.SerpAPIConfig {
	return config.SerpAPIConfig{
		Enabled: true,
		APIKey:  "serp-key",
		Recency: "month",
		Timeout: 5 * time.Second,
	}
}

func TestSerpAPIDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SerpAPIConfig
	}{
		{"disabled", config.SerpAPIConfig{Enabled: false, APIKey: "key", Timeout: time.Second}},
		{"no key", config.SerpAPIConfig{Enabled: true, APIKey: "", Timeout: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSerpAPIAdapter(tt.cfg, nil, testLogger())
			listings, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer", Location: "Remote"})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(listings) != 0 {
				t.Errorf("len(listings) = %d, want 0", len(listings))
			}
		})
	}
}

func TestSerpAPINoRecencyOmitsDatePosted(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobs_results":[]}`))
	}))
	defer server.Close()

	cfg := serpTestConfig()
	cfg.Recency = ""
	a := NewSerpAPIAdapter(cfg, server.Client(), testLogger())
	a.baseURL = server.URL

	if _, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, present := gotQuery["date_posted"]; present {
		t.Errorf("date_posted sent as %q, want parameter omitted", gotQuery.Get("date_posted"))
	}
}

func TestSerpAPISearch(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobs_results":[
			{"title":"Data Engineer","company_name":"Acme","location":"Denver, CO",
			 "description":"Pipelines.","detected_extensions":{"posted_at":"3 days ago"},
			 "related_links":[{"link":"https://acme.example/jobs/7"}]}
		]}`))
	}))
	defer server.Close()

	a := NewSerpAPIAdapter(serpTestConfig(), server.Client(), testLogger())
	a.baseURL = server.URL

	listings, err := a.Search(context.Background(), types.SearchQuery{
		JobTitle:   "Data Engineer",
		Location:   "Denver",
		Experience: "mid",
		Category:   "engineering",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got := gotQuery.Get("engine"); got != "google_jobs" {
		t.Errorf("engine = %q, want google_jobs", got)
	}
	if got := gotQuery.Get("q"); got != "Data Engineer in Denver mid engineering" {
		t.Errorf("q = %q", got)
	}
	if got := gotQuery.Get("date_posted"); got != "month" {
		t.Errorf("date_posted = %q, want month", got)
	}
	if got := gotQuery.Get("api_key"); got != "serp-key" {
		t.Errorf("api_key = %q", got)
	}

	if len(listings) != 1 {
		t.Fatalf("len(listings) = %d, want 1", len(listings))
	}
	l := listings[0]
	if l.Title != "Data Engineer" || l.Company != "Acme" || l.Location != "Denver, CO" {
		t.Errorf("listing = %+v", l)
	}
	if l.Posted != "3 days ago" {
		t.Errorf("Posted = %q", l.Posted)
	}
	if l.ApplyLink != "https://acme.example/jobs/7" {
		t.Errorf("ApplyLink = %q", l.ApplyLink)
	}
	if l.Source != "SerpAPI" {
		t.Errorf("Source = %q", l.Source)
	}
}
