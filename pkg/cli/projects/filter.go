package projects

import (
	"strings"

	"buidl-explorer-go/pkg/models"
)

// Filter returns the records whose name or organization contains term,
// ignoring case, in their original order. Missing fields match as "".
// An empty term returns every record.
func Filter(records []models.ProjectRecord, term string) []models.ProjectRecord {
	if term == "" {
		return records
	}

	needle := strings.ToLower(term)
	matched := make([]models.ProjectRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(deref(r.DisplayName)), needle) ||
			strings.Contains(strings.ToLower(deref(r.Organization)), needle) {
			matched = append(matched, r)
		}
	}
	return matched
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
