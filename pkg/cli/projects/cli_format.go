package projects

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"buidl-explorer-go/pkg/models"
)

// FormatTableOutput renders records as a table for CLI output
func FormatTableOutput(records []models.ProjectRecord) string {
	if len(records) == 0 {
		return "No projects found.\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	writeTable(&b, records)
	b.WriteString(fmt.Sprintf("Total: %d project(s)\n", len(records)))
	return b.String()
}

func writeTable(w io.Writer, records []models.ProjectRecord) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Org", "Profile")

	for _, r := range records {
		table.Append(
			r.ID.String(),
			Truncate(DisplayName(r), 40),
			Truncate(Organization(r), 30),
			ProfileURL(r),
		)
	}

	table.Render()
}

// FormatDetails renders every field of one record
func FormatDetails(r models.ProjectRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  ID:      %s\n", r.ID))
	b.WriteString(fmt.Sprintf("  Name:    %s\n", DisplayName(r)))
	b.WriteString(fmt.Sprintf("  Org:     %s\n", Organization(r)))
	profile := ProfileURL(r)
	if profile == "" {
		profile = "(none)"
	}
	b.WriteString(fmt.Sprintf("  Profile: %s\n", profile))
	return b.String()
}

// FormatSearchSummary describes how many records a search kept
func FormatSearchSummary(shown, total int, term string) string {
	if term == "" {
		return fmt.Sprintf("%d project(s)", total)
	}
	return fmt.Sprintf("%d of %d project(s) match %q", shown, total, term)
}

// FormatErrorMessage formats an error message consistently
func FormatErrorMessage(err error) string {
	return fmt.Sprintf("❌ Error: %v\n", err)
}

// WriteToStderr writes formatted output to stderr
func WriteToStderr(content string) {
	fmt.Fprint(os.Stderr, content)
}
