package vanilla

import "strings"

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "df-" + trimmed
}

func errorID(name string) string {
	id := controlID(name)
	if id == "" {
		return ""
	}
	return id + "-error"
}

// maskSecret replaces every rune of a secret value in listings.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat("•", len([]rune(value)))
}
