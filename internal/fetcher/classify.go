package fetcher

import "strings"

type failureRule struct {
	message  string
	patterns []string
}

// Checked in order; the first rule with a matching pattern wins.
var failureRules = []failureRule{
	{
		message:  "Video is unavailable, private, or deleted",
		patterns: []string{"video unavailable", "video has been removed", "private video", "this video is unavailable", "has been terminated"},
	},
	{
		message:  "Video is blocked or restricted",
		patterns: []string{"copyright", "blocked", "not available in your country", "geo restrict"},
	},
	{
		message:  "Network error during download",
		patterns: []string{"timeout", "timed out", "network", "connection", "unable to download webpage"},
	},
	{
		message:  "Video is age-restricted",
		patterns: []string{"age-restricted", "age restricted", "confirm your age", "inappropriate for some users"},
	},
}

// Classify maps raw tool error text to a message fit for display.
// It is advisory only and never decides control flow.
func Classify(errText string) string {
	lower := strings.ToLower(errText)
	for _, rule := range failureRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				return rule.message
			}
		}
	}
	if strings.TrimSpace(errText) == "" {
		return "Unknown download error"
	}
	return "Download failed: " + strings.TrimSpace(errText)
}
