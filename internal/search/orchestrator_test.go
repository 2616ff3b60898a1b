package search

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/extract"
	"jobfinder/internal/providers"
	"jobfinder/internal/types"
)

type fakeAdapter struct {
	name     string
	listings []types.JobListing
	err      error
	calls    atomic.Int64
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(ctx context.Context, q types.SearchQuery) ([]types.JobListing, error) {
	f.calls.Add(1)
	return f.listings, f.err
}

func (f *fakeAdapter) Stats() map[string]any { return map[string]any{} }

type noopTagger struct{}

func (noopTagger) Entities(string) ([]extract.Entity, error) { return nil, nil }

func makeDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}
	fmt.Fprint(f, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(f, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	fmt.Fprint(f, `</w:body></w:document>`)
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func newTestOrchestrator(resume, manual []providers.Adapter) *Orchestrator {
	logger := errors.NewLogger(slog.LevelError)
	cfg := config.SearchConfig{DefaultLocation: "Remote", DefaultLimit: 10, MaxLimit: 50}
	extractCfg := config.ExtractConfig{
		MaxLines:          400,
		EntityLines:       120,
		TitleExactLines:   60,
		TitlePatternLines: 80,
		KeywordLines:      50,
		SkillCap:          10,
		SkillFloor:        5,
	}
	extractor := extract.NewFieldExtractor(extractCfg, extract.NewVocabulary(), extract.NewTextExtractor(), noopTagger{}, logger)
	return NewOrchestrator(cfg, extractor, resume, manual, NewAggregator(false), logger, nil)
}

func TestSearchByResume(t *testing.T) {
	a := &fakeAdapter{name: "RapidAPI", listings: []types.JobListing{
		listing("Software Engineer", "Acme", "Denver", "RapidAPI"),
	}}
	b := &fakeAdapter{name: "DuckDuckGo", listings: []types.JobListing{
		listing("Software Engineer", "Acme", "Denver", "DuckDuckGo"), // duplicate
		listing("Backend Engineer", "Beta", "Remote", "DuckDuckGo"),
	}}

	o := newTestOrchestrator([]providers.Adapter{a, b}, nil)
	doc := types.ResumeDocument{
		Bytes:    makeDOCX(t, "Jane Doe", "Senior Software Engineer", "Go and Python"),
		Filename: "resume.docx",
	}

	result, err := o.SearchByResume(context.Background(), doc, "", 10)
	if err != nil {
		t.Fatalf("SearchByResume() error = %v", err)
	}

	if result.Profile.JobTitle != "Software Engineer" {
		t.Errorf("JobTitle = %q, want %q", result.Profile.JobTitle, "Software Engineer")
	}
	if result.Location != "Remote" {
		t.Errorf("Location = %q, want default %q", result.Location, "Remote")
	}
	if len(result.Listings) != 2 {
		t.Fatalf("len(Listings) = %d, want 2 after dedupe", len(result.Listings))
	}
	if result.Listings[0].Source != "RapidAPI" {
		t.Errorf("first listing Source = %q, want provider-priority winner RapidAPI", result.Listings[0].Source)
	}
	if len(result.ProviderErrors) != 0 {
		t.Errorf("ProviderErrors = %v, want empty", result.ProviderErrors)
	}
}

func TestSearchByResumeTitleNotDetected(t *testing.T) {
	a := &fakeAdapter{name: "RapidAPI"}
	o := newTestOrchestrator([]providers.Adapter{a}, nil)

	doc := types.ResumeDocument{
		Bytes:    makeDOCX(t, "Jane Doe", "A motivated generalist"),
		Filename: "resume.docx",
	}

	_, err := o.SearchByResume(context.Background(), doc, "Denver", 10)
	var be *types.BusinessError
	if !stderrors.As(err, &be) {
		t.Fatalf("SearchByResume() error = %v, want BusinessError", err)
	}
	if be.Kind != types.TitleNotDetected {
		t.Errorf("Kind = %q, want %q", be.Kind, types.TitleNotDetected)
	}
	if got := a.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0 when no title is detected", got)
	}
}

func TestSearchByResumeProviderFailureIsolation(t *testing.T) {
	ok := &fakeAdapter{name: "RapidAPI", listings: []types.JobListing{
		listing("Data Engineer", "Acme", "Denver", "RapidAPI"),
	}}
	failing := &fakeAdapter{name: "DuckDuckGo", err: errors.NewNetworkError(errors.ErrCodeNetworkFailure, "connection refused", nil)}

	o := newTestOrchestrator([]providers.Adapter{ok, failing}, nil)
	doc := types.ResumeDocument{
		Bytes:    makeDOCX(t, "Jane Doe", "Data Engineer"),
		Filename: "resume.docx",
	}

	result, err := o.SearchByResume(context.Background(), doc, "Denver", 10)
	if err != nil {
		t.Fatalf("SearchByResume() error = %v, a provider failure must not fail the request", err)
	}
	if len(result.Listings) != 1 {
		t.Errorf("len(Listings) = %d, want 1 from the healthy provider", len(result.Listings))
	}
	if _, ok := result.ProviderErrors["DuckDuckGo"]; !ok {
		t.Errorf("ProviderErrors = %v, want entry for the failing provider", result.ProviderErrors)
	}
}

func TestSearchByResumeLimit(t *testing.T) {
	var many []types.JobListing
	for i := 0; i < 30; i++ {
		many = append(many, listing(fmt.Sprintf("Engineer %d", i), "Acme", "Remote", "RapidAPI"))
	}
	a := &fakeAdapter{name: "RapidAPI", listings: many}
	o := newTestOrchestrator([]providers.Adapter{a}, nil)
	doc := types.ResumeDocument{
		Bytes:    makeDOCX(t, "Jane Doe", "Software Engineer"),
		Filename: "resume.docx",
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"truncated", 5, 5},
		{"zero limit means empty success", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := o.SearchByResume(context.Background(), doc, "Denver", tt.limit)
			if err != nil {
				t.Fatalf("SearchByResume() error = %v", err)
			}
			if len(result.Listings) != tt.want {
				t.Errorf("len(Listings) = %d, want %d", len(result.Listings), tt.want)
			}
		})
	}
}

func TestSearchManual(t *testing.T) {
	a := &fakeAdapter{name: "RapidAPI", listings: []types.JobListing{
		listing("Data Analyst", "Acme", "Denver", "RapidAPI"),
	}}
	serp := &fakeAdapter{name: "SerpAPI", listings: []types.JobListing{}}

	o := newTestOrchestrator(nil, []providers.Adapter{a, serp})

	result, err := o.SearchManual(context.Background(), types.SearchQuery{
		JobTitle: "Data Analyst",
		Location: "Denver",
	}, 10)
	if err != nil {
		t.Fatalf("SearchManual() error = %v", err)
	}
	if len(result.Listings) != 1 {
		t.Errorf("len(Listings) = %d, want 1", len(result.Listings))
	}
	if serp.calls.Load() != 1 {
		t.Errorf("serp calls = %d, want 1", serp.calls.Load())
	}
}

func TestSearchManualRequiresTitle(t *testing.T) {
	o := newTestOrchestrator(nil, nil)
	_, err := o.SearchManual(context.Background(), types.SearchQuery{Location: "Denver"}, 10)
	if err == nil {
		t.Fatal("SearchManual() expected validation error for empty title")
	}
	if !errors.IsErrorType(err, errors.ErrorTypeValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}
