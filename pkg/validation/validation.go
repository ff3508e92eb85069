package validation

import "strings"

// IsValidTimeframe reports whether s is a recognized analytics timeframe
func IsValidTimeframe(s string) bool {
	return s == "1h" || s == "24h" || s == "7d" || s == "30d"
}

// NormalizeQuery lowercases and trims a query string for grouping
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
