package common

import (
	"fmt"
	"sort"
	"strings"
)

// Finding is a single line of analysis output
type Finding struct {
	Message string
	Count   int
	IsRisky bool
}

// FormatFindings formats findings under a title, grouped by category when
// categories are given
func FormatFindings(title string, findings []Finding, categories map[string][]Finding) string {
	if len(findings) == 0 && len(categories) == 0 {
		return title + "\nNothing to report"
	}

	var result strings.Builder
	result.WriteString(title)

	if len(categories) > 0 {
		result.WriteString("\n")
		names := make([]string, 0, len(categories))
		for category := range categories {
			names = append(names, category)
		}
		sort.Strings(names)
		for _, category := range names {
			categoryFindings := categories[category]
			if len(categoryFindings) == 0 {
				continue
			}

			var emoji string
			switch {
			case strings.Contains(strings.ToLower(category), "section"):
				emoji = "📦"
			case strings.Contains(strings.ToLower(category), "segment"):
				emoji = "🧱"
			case strings.Contains(strings.ToLower(category), "string"):
				emoji = "🔤"
			default:
				emoji = "🛠️"
			}

			result.WriteString(fmt.Sprintf("%s %s:\n", emoji, strings.ToUpper(category)))
			for _, f := range categoryFindings {
				prefix := "   ✓ "
				if f.IsRisky {
					prefix = "   ⚠️ "
				}
				result.WriteString(prefix + f.Message + "\n")
			}
		}
	}

	if len(findings) > 0 && len(categories) == 0 {
		for _, f := range findings {
			prefix := "✓ "
			if f.IsRisky {
				prefix = "⚠️ "
			}
			result.WriteString("\n" + prefix + f.Message)
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}

// CategorizeFindings groups findings by the table they talk about
func CategorizeFindings(findings []Finding) map[string][]Finding {
	categories := map[string][]Finding{
		"SECTIONS": {},
		"SEGMENTS": {},
		"STRINGS":  {},
		"OTHER":    {},
	}

	for _, f := range findings {
		msg := strings.ToLower(f.Message)
		switch {
		case strings.Contains(msg, "section"):
			categories["SECTIONS"] = append(categories["SECTIONS"], f)
		case strings.Contains(msg, "segment"):
			categories["SEGMENTS"] = append(categories["SEGMENTS"], f)
		case strings.Contains(msg, "string"):
			categories["STRINGS"] = append(categories["STRINGS"], f)
		default:
			categories["OTHER"] = append(categories["OTHER"], f)
		}
	}

	// Remove empty categories
	for category, fs := range categories {
		if len(fs) == 0 {
			delete(categories, category)
		}
	}

	return categories
}
