package common

import (
	"strings"
)

// ParsePatterns splits a comma separated list into exact names and prefixes.
// A trailing '*' marks a prefix.
func ParsePatterns(list string) (exactNames, prefixNames []string) {
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case strings.HasSuffix(p, "*"):
			prefixNames = append(prefixNames, strings.TrimSuffix(p, "*"))
		default:
			exactNames = append(exactNames, p)
		}
	}
	return exactNames, prefixNames
}

// MatchesPattern checks if a string matches any of the given exact names or prefixes
func MatchesPattern(target string, exactNames, prefixNames []string) bool {
	// Check exact matches
	for _, name := range exactNames {
		if name != "" && target == name {
			return true
		}
	}

	// Check prefix matches
	for _, prefix := range prefixNames {
		if prefix != "" && strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}
