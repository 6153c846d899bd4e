package common

import (
	"regexp"
	"sort"
	"strings"
)

var (
	networkURLRegex   = regexp.MustCompile(`^(?:https?|ftp|ssh|telnet|ldap)://[a-zA-Z0-9.-]+|^www\.[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	emailRegex        = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	versionRegex      = regexp.MustCompile(`(?i)\b(?:v|vers|version)\s*\.?\s*([0-9]{1,3}\.){1,2}[0-9]{1,3}\b|go1\.[0-9]{1,2}(?:\.[0-9]{1,2})?\b|GCC: \([^)]+\) [0-9]+\.[0-9]+(?:\.[0-9]+)?`)
	buildInfoRegex    = regexp.MustCompile(`(?i)Go build ID: "[^"]+"|build[-\s]?id[:\s]*[a-f0-9]{7,40}|/build/[^/\s]+/[^/\s]+\.(?:go|c|cpp|rs)`)
	realFilePathRegex = regexp.MustCompile(`^/[^<>:"|?*\x00-\x1f/]+(/[^<>:"|?*\x00-\x1f/]+)+$`)
)

// String categories reported by ClassifyString.
const (
	CategoryURL      = "Network URLs"
	CategoryEmail    = "E-mail addresses"
	CategoryVersion  = "Versions/Compiler"
	CategoryBuild    = "Build information"
	CategoryFilePath = "File paths"
)

// ExtractStrings returns the runs of printable ASCII in data that are at
// least minLen bytes long, trimmed of surrounding space.
func ExtractStrings(data []byte, minLen int) []string {
	var results []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minLen {
			if s := strings.TrimSpace(string(data[start:end])); len(s) >= minLen {
				results = append(results, s)
			}
		}
		start = -1
	}
	for i, b := range data {
		if b >= 32 && b <= 126 {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return results
}

// ClassifyString returns the category of a notable string, or "" if the
// string is unremarkable.
func ClassifyString(s string) string {
	switch {
	case versionRegex.MatchString(s) && len(s) < 100:
		return CategoryVersion
	case buildInfoRegex.MatchString(s):
		return CategoryBuild
	case networkURLRegex.MatchString(strings.ToLower(s)):
		return CategoryURL
	case emailRegex.MatchString(s):
		return CategoryEmail
	case realFilePathRegex.MatchString(s):
		return CategoryFilePath
	default:
		return ""
	}
}

// CategorizeStrings classifies strs, dropping duplicates and unremarkable
// strings. Each category is sorted.
func CategorizeStrings(strs []string) map[string][]string {
	categories := make(map[string][]string)
	seen := make(map[string]bool)
	for _, s := range strs {
		if seen[s] {
			continue
		}
		seen[s] = true
		if c := ClassifyString(s); c != "" {
			categories[c] = append(categories[c], s)
		}
	}
	for _, items := range categories {
		sort.Strings(items)
	}
	return categories
}
