package projects

import (
	"strings"
	"unicode"

	"buidl-explorer-go/pkg/models"
)

const (
	unnamedProject = "Unnamed Project"
	noOrganization = "N/A"
)

// DisplayName returns the record's name, or a placeholder if missing
func DisplayName(r models.ProjectRecord) string {
	if name := CleanText(deref(r.DisplayName)); name != "" {
		return name
	}
	return unnamedProject
}

// Organization returns the record's organization, or "N/A" if missing
func Organization(r models.ProjectRecord) string {
	if org := CleanText(deref(r.Organization)); org != "" {
		return org
	}
	return noOrganization
}

// ProfileURL returns the record's profile link, or "" if missing
func ProfileURL(r models.ProjectRecord) string {
	return strings.TrimSpace(CleanText(deref(r.ProfileURL)))
}

// CleanText strips C0 and C1 control characters scraped pages leave behind.
func CleanText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Truncate shortens s to at most maxLen runes
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
