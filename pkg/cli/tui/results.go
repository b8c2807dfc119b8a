package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/cli/projects"
	"buidl-explorer-go/pkg/cli/tui/explorer"
	"buidl-explorer-go/pkg/models"
)

// resultsPane is the searchable project list shared by the explorer and
// browse flows. It never modifies the records it is given.
type resultsPane struct {
	records  []models.ProjectRecord
	filtered []models.ProjectRecord

	search   textinput.Model
	selected int
	step     int

	copy func(text string) error
}

func newResultsPane() *resultsPane {
	search := textinput.New()
	search.Prompt = "🔍 "
	search.Placeholder = "Search by name or org"
	search.Width = 40

	return &resultsPane{
		search: search,
		step:   explorer.StepList,
		copy:   clipboard.WriteAll,
	}
}

// SetRecords replaces the source records and recomputes the filtered view.
// The search term is kept.
func (p *resultsPane) SetRecords(records []models.ProjectRecord) {
	p.records = records
	p.step = explorer.StepList
	p.refilter()
}

// Term returns the current search term
func (p *resultsPane) Term() string {
	return p.search.Value()
}

// Filtered returns the records currently shown
func (p *resultsPane) Filtered() []models.ProjectRecord {
	return p.filtered
}

func (p *resultsPane) refilter() {
	p.filtered = projects.Filter(p.records, p.search.Value())
	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Selected returns the highlighted record, if any
func (p *resultsPane) Selected() (models.ProjectRecord, bool) {
	if p.selected < 0 || p.selected >= len(p.filtered) {
		return models.ProjectRecord{}, false
	}
	return p.filtered[p.selected], true
}

// CapturingInput reports whether keys such as q and esc belong to the pane
func (p *resultsPane) CapturingInput() bool {
	return p.search.Focused() || p.step == explorer.StepDetails
}

// HandleKey applies msg to the pane and reports whether it was consumed
func (p *resultsPane) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if p.search.Focused() {
		switch key {
		case "esc", "enter":
			p.search.Blur()
			return true, nil
		case "ctrl+c":
			return false, nil
		}
		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		p.refilter()
		return true, cmd
	}

	if p.step == explorer.StepDetails {
		switch key {
		case "esc", "b", "enter":
			p.step = explorer.StepList
			return true, nil
		case "q":
			return true, tea.Quit
		case "y":
			return true, p.copySelected()
		}
		return true, nil
	}

	switch key {
	case "/":
		return true, p.search.Focus()
	case "enter":
		if _, ok := p.Selected(); ok {
			p.step = explorer.StepDetails
		}
		return true, nil
	case "y":
		return true, p.copySelected()
	}

	if newSelected, handled := handleListNavigation(key, p.selected, len(p.filtered)); handled {
		p.selected = newSelected
		return true, nil
	}
	return false, nil
}

func (p *resultsPane) copySelected() tea.Cmd {
	r, ok := p.Selected()
	if !ok {
		return nil
	}
	url := projects.ProfileURL(r)
	if url == "" {
		return func() tea.Msg {
			return explorer.CopiedMsg{Err: fmt.Errorf("project has no profile URL")}
		}
	}
	copyFn := p.copy
	return func() tea.Msg {
		err := copyFn(url)
		if err != nil {
			logger.LogError(err, "clipboard write failed")
		}
		return explorer.CopiedMsg{Text: url, Err: err}
	}
}

// View renders the search box and the list or the details of one record
func (p *resultsPane) View(maxWidth int) string {
	if p.step == explorer.StepDetails {
		r, ok := p.Selected()
		if ok {
			var b strings.Builder
			b.WriteString(boldStyle.Render("Project Details") + "\n")
			b.WriteString(renderDivider(maxWidth))
			b.WriteString("\n")
			b.WriteString(renderProjectDetails(r, maxWidth))
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("(Press Enter, 'b' or Esc to go back, 'y' to copy the profile URL)") + "\n")
			return b.String()
		}
	}

	var b strings.Builder
	b.WriteString(p.search.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(projects.FormatSearchSummary(len(p.filtered), len(p.records), p.search.Value())))
	b.WriteString("\n\n")
	b.WriteString(renderProjectList(p.filtered, p.selected, explorer.MaxListRows, maxWidth))
	return b.String()
}
