package utils

import (
	"regexp"
	"strings"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// NormalizeID trims an identifier taken from a path or request body
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// FormatNameForDisplay converts a name to title case for display
func FormatNameForDisplay(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// Convert to lowercase and capitalize first letter
	name = strings.ToLower(name)
	return strings.ToUpper(string(name[0])) + name[1:]
}

// FullName joins first and last names for display
func FullName(first, last string) string {
	return strings.TrimSpace(FormatNameForDisplay(first) + " " + FormatNameForDisplay(last))
}

// CleanFileName removes invalid characters from filename
func CleanFileName(filename string) string {
	// Replace invalid characters with underscore
	cleaned := invalidFileChars.ReplaceAllString(filename, "_")

	// Remove extra spaces and trim
	cleaned = strings.TrimSpace(cleaned)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, "_")

	return cleaned
}
