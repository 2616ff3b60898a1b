package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/types"
)

func ddgTestConfig(baseURL string) config.DuckDuckGoConfig {
	return config.DuckDuckGoConfig{
		BaseURL:     baseURL,
		Domains:     []string{"linkedin.com/jobs", "indeed.com"},
		MaxResults:  10,
		EnglishOnly: true,
		Timeout:     5 * time.Second,
	}
}

func ddgResultHTML(title, target, snippet string) string {
	redirect := "//duckduckgo.com/l/?uddg=" + url.QueryEscape(target)
	return fmt.Sprintf(`<div class="result results_links web-result">
		<h2 class="result__title"><a rel="nofollow" class="result__a" href="%s">%s</a></h2>
		<a class="result__snippet" href="%s">%s</a>
	</div>`, redirect, title, redirect, snippet)
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>`)
		fmt.Fprint(w, ddgResultHTML("Software Engineer - Acme", "https://www.linkedin.com/jobs/view/123", "Build Go services at Acme"))
		fmt.Fprint(w, ddgResultHTML("Ingénieur Logiciel", "https://www.indeed.com/viewjob?jk=9", "Développement côté serveur"))
		fmt.Fprint(w, ddgResultHTML("Engineer at Elsewhere", "https://example.com/jobs/5", "Not a job board"))
		fmt.Fprint(w, ddgResultHTML("Backend Engineer", "https://www.indeed.com/viewjob?jk=42", "Backend role"))
		fmt.Fprint(w, `</body></html>`)
	}))
	defer server.Close()

	a := NewDuckDuckGoAdapter(ddgTestConfig(server.URL), server.Client(), testLogger())
	listings, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Software Engineer", Location: "Denver"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if !strings.Contains(gotQuery, "Software Engineer jobs in Denver") {
		t.Errorf("query = %q, want job title and location", gotQuery)
	}
	if !strings.Contains(gotQuery, "site:linkedin.com/jobs OR site:indeed.com") {
		t.Errorf("query = %q, want OR'd site restriction", gotQuery)
	}

	// The non-English and off-domain hits are dropped.
	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2: %+v", len(listings), listings)
	}

	first := listings[0]
	if first.Title != "Software Engineer - Acme" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.ApplyLink != "https://www.linkedin.com/jobs/view/123" {
		t.Errorf("ApplyLink = %q, want unwrapped redirect target", first.ApplyLink)
	}
	if first.Company != "N/A" || first.Location != "N/A" {
		t.Errorf("placeholders = (%q, %q), want N/A", first.Company, first.Location)
	}
	if first.Posted != "" {
		t.Errorf("Posted = %q, want empty", first.Posted)
	}
	if first.Description != "Build Go services at Acme." {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Source != "DuckDuckGo" {
		t.Errorf("Source = %q", first.Source)
	}
}

func TestDuckDuckGoMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>`)
		for i := 0; i < 20; i++ {
			fmt.Fprint(w, ddgResultHTML(
				fmt.Sprintf("Engineer %d", i),
				fmt.Sprintf("https://www.indeed.com/viewjob?jk=%d", i),
				"A role"))
		}
		fmt.Fprint(w, `</body></html>`)
	}))
	defer server.Close()

	cfg := ddgTestConfig(server.URL)
	cfg.MaxResults = 3
	a := NewDuckDuckGoAdapter(cfg, server.Client(), testLogger())

	listings, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer", Location: "Remote"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(listings) != 3 {
		t.Errorf("len(listings) = %d, want 3", len(listings))
	}
}

func TestDuckDuckGoServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	a := NewDuckDuckGoAdapter(ddgTestConfig(server.URL), server.Client(), testLogger())
	_, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer", Location: "Remote"})
	if err == nil {
		t.Fatal("Search() expected error for HTTP failure")
	}
}

func TestResolveDDGLink(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "redirect link",
			href: "//duckduckgo.com/l/?uddg=" + url.QueryEscape("https://www.indeed.com/viewjob?jk=1"),
			want: "https://www.indeed.com/viewjob?jk=1",
		},
		{
			name: "direct link",
			href: "https://www.linkedin.com/jobs/view/2",
			want: "https://www.linkedin.com/jobs/view/2",
		},
		{
			name: "empty",
			href: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveDDGLink(tt.href); got != tt.want {
				t.Errorf("resolveDDGLink(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
