package tui

import (
	"fmt"
	"strings"
)

// HelpItem represents a single keyboard shortcut and its description
type HelpItem struct {
	Key         string
	Description string
}

// CommonHelpContent returns help for common commands
func CommonHelpContent() string {
	items := []HelpItem{
		{"?", "Toggle help"},
		{"m", "Return to main menu"},
		{"q / Esc", "Quit application"},
		{"Ctrl+C", "Force quit"},
	}
	return renderHelpItems(items)
}

// RootMenuHelpContent returns help for root menu
func RootMenuHelpContent() string {
	items := []HelpItem{
		{"1-2", "Select menu option (Scrape & explore / Browse last results)"},
		{"q / Esc", "Quit"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// ExplorerHelpContent returns help for the scrape & explore flow
func ExplorerHelpContent() string {
	items := []HelpItem{
		{"s", "Start a scrape (disabled while one is running)"},
		{"/", "Search by project name or organization"},
		{"Enter / Esc", "Leave the search box"},
		{"↑ / ↓ / j / k", "Navigate projects"},
		{"Enter", "View project details"},
		{"y", "Copy the selected profile URL"},
		{"d", "Download the spreadsheet export"},
		{"m", "Return to menu (the job keeps running)"},
		{"q", "Quit"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// BrowseHelpContent returns help for the browse flow
func BrowseHelpContent() string {
	items := []HelpItem{
		{"/", "Search by project name or organization"},
		{"↑ / ↓ / j / k", "Navigate projects"},
		{"Enter", "View project details"},
		{"y", "Copy the selected profile URL"},
		{"r", "Reload"},
		{"m", "Return to menu"},
		{"q", "Quit"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// renderHelpItems formats help items into a readable string
func renderHelpItems(items []HelpItem) string {
	var b strings.Builder
	for _, item := range items {
		keyStyle := boldStyle.Foreground(colorPrimary)
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(item.Key),
			item.Description))
	}
	return b.String()
}
