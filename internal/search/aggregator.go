package search

import (
	"strings"

	"jobfinder/internal/types"
)

// Aggregator merges provider outputs into one bounded, duplicate-free list.
// Provider order is priority order: the first occurrence of a dedupe key
// wins and later duplicates are dropped.
type Aggregator struct {
	// normalize switches dedupe keys from byte-exact comparison to
	// case-insensitive, whitespace-trimmed comparison.
	normalize bool
}

// NewAggregator creates an aggregator. normalize selects normalized dedupe
// keys; the default behavior compares keys exactly as providers returned
// them.
func NewAggregator(normalize bool) *Aggregator {
	return &Aggregator{normalize: normalize}
}

type dedupeKey struct {
	title    string
	company  string
	location string
}

func (a *Aggregator) key(l types.JobListing) dedupeKey {
	if !a.normalize {
		return dedupeKey{title: l.Title, company: l.Company, location: l.Location}
	}
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return dedupeKey{title: norm(l.Title), company: norm(l.Company), location: norm(l.Location)}
}

// Merge concatenates the listing slices in order, drops duplicates and
// truncates to limit. A limit of zero or less yields an empty result.
// The second return value is the number of duplicates dropped.
func (a *Aggregator) Merge(limit int, lists ...[]types.JobListing) ([]types.JobListing, int) {
	merged := make([]types.JobListing, 0, limit)
	if limit <= 0 {
		return merged, 0
	}

	seen := make(map[dedupeKey]bool)
	dropped := 0
	for _, list := range lists {
		for _, l := range list {
			k := a.key(l)
			if seen[k] {
				dropped++
				continue
			}
			seen[k] = true
			if len(merged) < limit {
				merged = append(merged, l)
			}
		}
	}
	return merged, dropped
}
