package sanitize

import (
	"regexp"
	"strings"
)

var (
	// nonFilenameRegex matches characters not allowed in blob filenames
	nonFilenameRegex = regexp.MustCompile(`[^a-z0-9-]+`)

	// multiDashRegex matches multiple consecutive dashes
	multiDashRegex = regexp.MustCompile(`-+`)
)

// ForFilename sanitizes a string for use in a filename (kebab-case).
func ForFilename(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	// Remove non-alphanumeric characters, except hyphens
	s = nonFilenameRegex.ReplaceAllString(s, "")
	// Collapse multiple hyphens
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 { // Truncate long names
		s = s[:50]
	}
	return s
}
