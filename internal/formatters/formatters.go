package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobfinder/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "SearchResult", &SearchTextFormatter{})
	registry.RegisterFormatter("markdown", "SearchResult", &SearchMarkdownFormatter{})
	registry.RegisterFormatter("text", "ExtractedProfile", &ProfileTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractedProfile", &ProfileMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.SearchResult, *types.SearchResult:
		return "SearchResult"
	case types.ExtractedProfile:
		return "ExtractedProfile"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asSearchResult(data any) (*types.SearchResult, bool) {
	switch v := data.(type) {
	case types.SearchResult:
		return &v, true
	case *types.SearchResult:
		return v, true
	default:
		return nil, false
	}
}

// SearchTextFormatter handles text formatting for search results
type SearchTextFormatter struct{}

func (stf *SearchTextFormatter) Format(data any) (string, error) {
	result, ok := asSearchResult(data)
	if !ok {
		return "", fmt.Errorf("expected SearchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== JOB SEARCH RESULTS ===\n\n")
	if result.Profile.JobTitle != "" {
		output.WriteString("Detected Profile:\n")
		if result.Profile.Name != "" {
			output.WriteString(fmt.Sprintf("  Name:   %s\n", result.Profile.Name))
		}
		output.WriteString(fmt.Sprintf("  Title:  %s\n", result.Profile.JobTitle))
		if len(result.Profile.Skills) > 0 {
			output.WriteString(fmt.Sprintf("  Skills: %s\n", strings.Join(result.Profile.Skills, ", ")))
		}
		output.WriteString("\n")
	}
	output.WriteString(fmt.Sprintf("Location: %s\n", result.Location))
	output.WriteString(fmt.Sprintf("Listings: %d\n\n", len(result.Listings)))

	for i, listing := range result.Listings {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, listing.Title))
		output.WriteString(fmt.Sprintf("   Company:  %s\n", listing.Company))
		output.WriteString(fmt.Sprintf("   Location: %s\n", listing.Location))
		if listing.Posted != "" {
			output.WriteString(fmt.Sprintf("   Posted:   %s\n", listing.Posted))
		}
		output.WriteString(fmt.Sprintf("   Source:   %s\n", listing.Source))
		output.WriteString(fmt.Sprintf("   Apply:    %s\n", listing.ApplyLink))
		if listing.Description != "" {
			output.WriteString("   ")
			output.WriteString(listing.Description)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(result.ProviderErrors) > 0 {
		output.WriteString("=== PROVIDER ERRORS ===\n")
		for provider, message := range result.ProviderErrors {
			output.WriteString(fmt.Sprintf("- %s: %s\n", provider, message))
		}
	}

	return output.String(), nil
}

func (stf *SearchTextFormatter) SupportedType() string {
	return "SearchResult"
}

// SearchMarkdownFormatter handles markdown formatting for search results
type SearchMarkdownFormatter struct{}

func (smf *SearchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asSearchResult(data)
	if !ok {
		return "", fmt.Errorf("expected SearchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Job Search Results\n\n")
	if result.Profile.JobTitle != "" {
		output.WriteString("## Detected Profile\n\n")
		if result.Profile.Name != "" {
			output.WriteString(fmt.Sprintf("**Name:** %s\n\n", result.Profile.Name))
		}
		output.WriteString(fmt.Sprintf("**Title:** %s\n\n", result.Profile.JobTitle))
		if len(result.Profile.Skills) > 0 {
			output.WriteString(fmt.Sprintf("**Skills:** %s\n\n", strings.Join(result.Profile.Skills, ", ")))
		}
	}
	output.WriteString(fmt.Sprintf("**Location:** %s\n\n", result.Location))
	output.WriteString(fmt.Sprintf("**Listings:** %d\n\n", len(result.Listings)))

	for i, listing := range result.Listings {
		output.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, listing.Title))
		output.WriteString(fmt.Sprintf("**Company:** %s  \n", listing.Company))
		output.WriteString(fmt.Sprintf("**Location:** %s  \n", listing.Location))
		if listing.Posted != "" {
			output.WriteString(fmt.Sprintf("**Posted:** %s  \n", listing.Posted))
		}
		output.WriteString(fmt.Sprintf("**Source:** %s  \n", listing.Source))
		output.WriteString(fmt.Sprintf("**Apply:** <%s>\n\n", listing.ApplyLink))
		if listing.Description != "" {
			output.WriteString(listing.Description)
			output.WriteString("\n\n")
		}
	}

	if len(result.ProviderErrors) > 0 {
		output.WriteString("## Provider Errors\n\n")
		for provider, message := range result.ProviderErrors {
			output.WriteString(fmt.Sprintf("- **%s:** %s\n", provider, message))
		}
	}

	return output.String(), nil
}

func (smf *SearchMarkdownFormatter) SupportedType() string {
	return "SearchResult"
}

// ProfileTextFormatter handles text formatting for extracted profiles
type ProfileTextFormatter struct{}

func (ptf *ProfileTextFormatter) Format(data any) (string, error) {
	profile, ok := data.(types.ExtractedProfile)
	if !ok {
		return "", fmt.Errorf("expected ExtractedProfile, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== EXTRACTED PROFILE ===\n\n")
	output.WriteString(fmt.Sprintf("Name:  %s\n", valueOrDash(profile.Name)))
	output.WriteString(fmt.Sprintf("Title: %s\n", valueOrDash(profile.JobTitle)))
	if len(profile.Skills) > 0 {
		output.WriteString("Skills:\n")
		for _, skill := range profile.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	} else {
		output.WriteString("Skills: (none detected)\n")
	}

	return output.String(), nil
}

func (ptf *ProfileTextFormatter) SupportedType() string {
	return "ExtractedProfile"
}

// ProfileMarkdownFormatter handles markdown formatting for extracted profiles
type ProfileMarkdownFormatter struct{}

func (pmf *ProfileMarkdownFormatter) Format(data any) (string, error) {
	profile, ok := data.(types.ExtractedProfile)
	if !ok {
		return "", fmt.Errorf("expected ExtractedProfile, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Extracted Profile\n\n")
	output.WriteString(fmt.Sprintf("**Name:** %s\n\n", valueOrDash(profile.Name)))
	output.WriteString(fmt.Sprintf("**Title:** %s\n\n", valueOrDash(profile.JobTitle)))
	if len(profile.Skills) > 0 {
		output.WriteString("## Skills\n\n")
		for _, skill := range profile.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	}

	return output.String(), nil
}

func (pmf *ProfileMarkdownFormatter) SupportedType() string {
	return "ExtractedProfile"
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
