package types

// ResumeDocument holds an uploaded resume exactly as received. It lives for
// the duration of one search request and is never persisted.
type ResumeDocument struct {
	Bytes        []byte
	Filename     string
	DeclaredMIME string
}

// ExtractedProfile is the structured output of field extraction.
// JobTitle may be empty, which signals that no title was detected.
type ExtractedProfile struct {
	Name     string   `json:"name"`
	JobTitle string   `json:"jobTitle"`
	Skills   []string `json:"skills"`
}

// JobListing is the common shape every provider response is normalized into.
// Immutable once constructed by an adapter.
type JobListing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Posted      string `json:"posted,omitempty"`
	Description string `json:"description"`
	ApplyLink   string `json:"applyLink"`
	Source      string `json:"source"`
}

// SearchQuery is the input handed to every provider adapter.
type SearchQuery struct {
	JobTitle   string `json:"jobTitle"`
	Location   string `json:"location"`
	Experience string `json:"experience,omitempty"`
	Category   string `json:"category,omitempty"`
}

// SearchResult is the aggregated outcome of one search request. Listings are
// deduplicated and capped at the caller's limit; ProviderErrors carries the
// per-adapter failures that were excluded from the merge.
type SearchResult struct {
	Location       string            `json:"location"`
	Profile        ExtractedProfile  `json:"profile"`
	Listings       []JobListing      `json:"results"`
	ProviderErrors map[string]string `json:"providerErrors,omitempty"`
}

// BusinessErrorKind enumerates the failures the orchestrator reports as data.
type BusinessErrorKind string

const (
	TitleNotDetected  BusinessErrorKind = "title_not_detected"
	UnsupportedFormat BusinessErrorKind = "unsupported_format"
)

// BusinessError is the single failure record a request can end with. The core
// never formats user-facing strings; the transport layer maps Kind to a
// protocol response.
type BusinessError struct {
	Kind    BusinessErrorKind `json:"kind"`
	Message string            `json:"message"`
}

func (e *BusinessError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
