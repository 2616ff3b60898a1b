package search

import (
	"testing"

	"jobfinder/internal/types"
)

func listing(title, company, location, source string) types.JobListing {
	return types.JobListing{
		Title:    title,
		Company:  company,
		Location: location,
		Source:   source,
	}
}

func TestMergeDedupe(t *testing.T) {
	a := NewAggregator(false)

	first := []types.JobListing{
		listing("Engineer", "Acme", "Denver", "RapidAPI"),
		listing("Analyst", "Beta", "Remote", "RapidAPI"),
	}
	second := []types.JobListing{
		listing("Engineer", "Acme", "Denver", "DuckDuckGo"), // duplicate key, different source
		listing("Engineer", "Gamma", "Denver", "DuckDuckGo"),
	}

	merged, dropped := a.Merge(10, first, second)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	// First occurrence in provider-priority order wins.
	if merged[0].Source != "RapidAPI" {
		t.Errorf("winner Source = %q, want RapidAPI", merged[0].Source)
	}
}

func TestMergeExactKeysDoNotNormalize(t *testing.T) {
	a := NewAggregator(false)

	merged, dropped := a.Merge(10,
		[]types.JobListing{listing("Engineer", "Acme", "Denver", "RapidAPI")},
		[]types.JobListing{listing("engineer", "ACME", " Denver ", "DuckDuckGo")},
	)
	if len(merged) != 2 || dropped != 0 {
		t.Errorf("exact keys merged = %d dropped = %d, want 2 and 0", len(merged), dropped)
	}
}

func TestMergeNormalizedKeys(t *testing.T) {
	a := NewAggregator(true)

	merged, dropped := a.Merge(10,
		[]types.JobListing{listing("Engineer", "Acme", "Denver", "RapidAPI")},
		[]types.JobListing{listing("engineer", "ACME", " Denver ", "DuckDuckGo")},
	)
	if len(merged) != 1 || dropped != 1 {
		t.Errorf("normalized keys merged = %d dropped = %d, want 1 and 1", len(merged), dropped)
	}
}

func TestMergeLimit(t *testing.T) {
	a := NewAggregator(false)

	var list []types.JobListing
	for i := 0; i < 20; i++ {
		list = append(list, listing(string(rune('A'+i)), "Acme", "Remote", "RapidAPI"))
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"under limit", 50, 20},
		{"at limit", 20, 20},
		{"truncated", 5, 5},
		{"zero limit", 0, 0},
		{"negative limit", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, _ := a.Merge(tt.limit, list)
			if len(merged) != tt.want {
				t.Errorf("len(merged) = %d, want %d", len(merged), tt.want)
			}
			if merged == nil {
				t.Error("Merge() must return an empty slice, not nil")
			}
		})
	}
}
