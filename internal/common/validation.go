package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat validates format against configured supported formats.
// An empty supported list means no restrictions.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ValidateLocation rejects location strings that cannot form a sane provider
// query. Providers treat an empty location as "anywhere", so empty is valid.
func ValidateLocation(location string) error {
	trimmed := strings.TrimSpace(location)
	if trimmed != location {
		return fmt.Errorf("location must not have leading or trailing whitespace: %q", location)
	}
	if strings.ContainsAny(location, "\n\r") {
		return fmt.Errorf("location must be a single line: %q", location)
	}
	return nil
}
