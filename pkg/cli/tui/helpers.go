package tui

import (
	"errors"
	"fmt"
	"strings"

	"buidl-explorer-go/pkg/cli/projects"
	"buidl-explorer-go/pkg/models"
	"buidl-explorer-go/pkg/scraper"

	"github.com/charmbracelet/lipgloss"
)

// renderEmptyState renders a standard empty state message
func renderEmptyState(message string) string {
	return "\n" + mutedStyle.Render(message) + "\n"
}

// renderLoadingState renders a standard loading message
func renderLoadingState(message string) string {
	return "\n" + infoStyle.Render(message) + "\n"
}

// renderProjectList renders a selectable window of records around selected
func renderProjectList(records []models.ProjectRecord, selected int, maxRows int, maxWidth int) string {
	if len(records) == 0 {
		return renderEmptyState("No projects found.")
	}

	start, end := listWindow(len(records), selected, maxRows)
	nameWidth := maxWidth - 6
	if nameWidth < 20 {
		nameWidth = 20
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		r := records[i]
		marker := " "
		var nameStyle lipgloss.Style
		if i == selected {
			marker = selectedMarkerStyle.Render("→")
			nameStyle = selectedStyle
		} else {
			nameStyle = projectNameStyle
		}

		name := projects.Truncate(projects.CleanText(projects.DisplayName(r)), nameWidth)
		org := projects.Truncate(projects.CleanText(projects.Organization(r)), nameWidth)
		b.WriteString(fmt.Sprintf("%s %s\n", marker, nameStyle.Render(name)))
		b.WriteString(fmt.Sprintf("  %s\n", projectOrgStyle.Render(org)))
	}
	if end-start < len(records) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%d-%d of %d)", start+1, end, len(records))) + "\n")
	}
	return b.String()
}

// listWindow picks the visible slice of a list so selected stays on screen
func listWindow(total, selected, maxRows int) (int, int) {
	if maxRows <= 0 || total <= maxRows {
		return 0, total
	}
	start := selected - maxRows/2
	if start < 0 {
		start = 0
	}
	end := start + maxRows
	if end > total {
		end = total
		start = end - maxRows
	}
	return start, end
}

// renderProjectDetails renders every field of one record
func renderProjectDetails(r models.ProjectRecord, maxWidth int) string {
	var b strings.Builder

	b.WriteString(fieldLabelStyle.Render("ID:"))
	b.WriteString(fmt.Sprintf(" %s\n", projectIDStyle.Render(r.ID.String())))

	b.WriteString(fieldLabelStyle.Render("Name:"))
	b.WriteString(wrapText(projects.CleanText(projects.DisplayName(r)), maxWidth-10, " "))

	b.WriteString(fieldLabelStyle.Render("Org:"))
	b.WriteString(wrapText(projects.CleanText(projects.Organization(r)), maxWidth-10, " "))

	b.WriteString(fieldLabelStyle.Render("Profile:"))
	if url := projects.ProfileURL(r); url != "" {
		b.WriteString(fmt.Sprintf(" %s\n", url))
	} else {
		b.WriteString(" " + mutedStyle.Render("(not set)") + "\n")
	}

	return b.String()
}

// wrapText wraps text to a specified width, breaking at word boundaries
func wrapText(text string, width int, indent string) string {
	if width < 20 {
		width = 20
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + "\n"
	}

	var b strings.Builder
	line := ""
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != "" {
			b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}
	if line != "" {
		b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
	}
	return b.String()
}

// handleListNavigation handles common navigation keys for list views (up/down/j/k)
// Returns the new selected index and whether navigation occurred
func handleListNavigation(key string, selected int, total int) (newSelected int, handled bool) {
	switch key {
	case "up", "k":
		if selected > 0 {
			return selected - 1, true
		}
		return selected, true
	case "down", "j":
		if selected < total-1 {
			return selected + 1, true
		}
		return selected, true
	case "home", "g":
		return 0, true
	case "end", "G":
		if total > 0 {
			return total - 1, true
		}
		return 0, true
	}
	return selected, false
}

// handleQuitKeys checks if a key should quit the current view
func handleQuitKeys(key string) bool {
	switch key {
	case "ctrl+c", "q", "esc":
		return true
	}
	return false
}

// userFacingError converts structured backend errors into friendly messages,
// while leaving other error types unchanged.
func userFacingError(err error) string {
	if err == nil {
		return ""
	}

	var backendErr *scraper.Error
	if errors.As(err, &backendErr) {
		return backendErr.UserMessage()
	}

	return "❌ " + err.Error()
}
