package providers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

func testLogger() *errors.Logger {
	return errors.NewLogger(slog.LevelError)
}

func jsearchTestConfig() config.JSearchConfig {
	return config.JSearchConfig{
		APIKey:  "test-key",
		Host:    "jsearch.p.rapidapi.com",
		Pages:   2,
		Timeout: 5 * time.Second,
	}
}

func TestJSearchSearch(t *testing.T) {
	var gotQuery, gotKey, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		if got := r.URL.Query().Get("num_pages"); got != "2" {
			t.Errorf("num_pages = %q, want %q", got, "2")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"job_title":"Software Engineer","employer_name":"Acme","job_city":"Denver","job_state":"CO",
			 "job_posted_at_datetime_utc":"2026-08-01T00:00:00Z","job_description":"Build services.","job_apply_link":"https://acme.example/jobs/1"},
			{"job_title":"","employer_name":"","job_city":"","job_state":"","job_description":"","job_apply_link":""}
		]}`))
	}))
	defer server.Close()

	a := NewJSearchAdapter(jsearchTestConfig(), server.Client(), testLogger())
	a.baseURL = server.URL

	listings, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Software Engineer", Location: "Denver"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "Software Engineer jobs in Denver" {
		t.Errorf("query = %q, want %q", gotQuery, "Software Engineer jobs in Denver")
	}
	if gotKey != "test-key" || gotHost != "jsearch.p.rapidapi.com" {
		t.Errorf("auth headers = (%q, %q), want configured key and host", gotKey, gotHost)
	}

	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2", len(listings))
	}

	first := listings[0]
	if first.Title != "Software Engineer" || first.Company != "Acme" {
		t.Errorf("first listing = %+v", first)
	}
	if first.Location != "Denver, CO" {
		t.Errorf("Location = %q, want %q", first.Location, "Denver, CO")
	}
	if first.Description != "Build services.." {
		t.Errorf("Description = %q, want snippet with trailing period", first.Description)
	}
	if first.Source != "RapidAPI" {
		t.Errorf("Source = %q, want RapidAPI", first.Source)
	}

	empty := listings[1]
	if empty.Title != "N/A" || empty.Company != "N/A" || empty.Location != "N/A" {
		t.Errorf("empty record placeholders = %+v", empty)
	}
	if empty.ApplyLink != "#" {
		t.Errorf("ApplyLink = %q, want %q", empty.ApplyLink, "#")
	}
	if empty.Posted != "N/A" {
		t.Errorf("Posted = %q, want %q", empty.Posted, "N/A")
	}
}

func TestJSearchMissingAPIKey(t *testing.T) {
	cfg := jsearchTestConfig()
	cfg.APIKey = ""
	a := NewJSearchAdapter(cfg, nil, testLogger())

	_, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer", Location: "Remote"})
	if err == nil {
		t.Fatal("Search() expected error for missing API key")
	}
	if !errors.IsErrorType(err, errors.ErrorTypeConfig) {
		t.Errorf("error type = %v, want config error", err)
	}
}

func TestJSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	a := NewJSearchAdapter(jsearchTestConfig(), server.Client(), testLogger())
	a.baseURL = server.URL

	_, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer", Location: "Remote"})
	if err == nil {
		t.Fatal("Search() expected error for API failure")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want status code in message", err)
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := snippet(long)
	if len(got) != 201 {
		t.Errorf("len(snippet) = %d, want 201", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("snippet must end with a period, got %q", got[len(got)-5:])
	}

	if got := snippet("short"); got != "short." {
		t.Errorf("snippet(short) = %q, want %q", got, "short.")
	}
}

func TestJSearchTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := jsearchTestConfig()
	cfg.Timeout = 20 * time.Millisecond
	a := NewJSearchAdapter(cfg, server.Client(), testLogger())
	a.baseURL = server.URL

	_, err := a.Search(context.Background(), types.SearchQuery{JobTitle: "Engineer", Location: "Remote"})
	if err == nil {
		t.Fatal("Search() expected error for exceeded deadline")
	}
	if !errors.IsErrorType(err, errors.ErrorTypeProvider) {
		t.Fatalf("error type = %v, want provider error", err)
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeProviderTimeout {
		t.Errorf("error code = %v, want %s", err, errors.ErrCodeProviderTimeout)
	}
}

type fakeNetError struct{ timeout bool }

func (e *fakeNetError) Error() string   { return "dial tcp: i/o timeout" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestRequestFailureClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType errors.ErrorType
		wantCode string
	}{
		{"deadline exceeded", context.DeadlineExceeded, errors.ErrorTypeProvider, errors.ErrCodeProviderTimeout},
		{"network timeout", &fakeNetError{timeout: true}, errors.ErrorTypeNetwork, errors.ErrCodeNetworkTimeout},
		{"plain failure", &fakeNetError{timeout: false}, errors.ErrorTypeNetwork, errors.ErrCodeNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requestFailure("jsearch", tt.err)
			if !errors.IsErrorType(err, tt.wantType) {
				t.Errorf("error type = %v, want %s", err, tt.wantType)
			}
			var appErr *errors.AppError
			if !stderrors.As(err, &appErr) || appErr.Code != tt.wantCode {
				t.Errorf("error code = %v, want %s", err, tt.wantCode)
			}
		})
	}
}
