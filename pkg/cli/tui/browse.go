package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"buidl-explorer-go/pkg/cli/tui/explorer"
	"buidl-explorer-go/pkg/models"
)

// ResultsSource fetches the finalized result set of the last job
type ResultsSource interface {
	FetchResults(ctx context.Context) ([]models.ProjectRecord, error)
}

// browseModel loads the results of the last completed scrape without
// starting a new job.
type browseModel struct {
	ctx    context.Context
	source ResultsSource

	results *resultsPane
	loaded  bool
	empty   bool
	err     error
	notice  string

	width int
}

// NewBrowseModel creates the browse flow
func NewBrowseModel(ctx context.Context, source ResultsSource) tea.Model {
	return NewViewportWrapper(newBrowseModel(ctx, source), ViewportConfig{
		Title:       "Last Scrape Results",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: BrowseHelpContent,
		MinWidth:    60,
		MinHeight:   10,
	})
}

func newBrowseModel(ctx context.Context, source ResultsSource) *browseModel {
	return &browseModel{
		ctx:     ctx,
		source:  source,
		results: newResultsPane(),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.load()
}

func (m *browseModel) load() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		records, err := source.FetchResults(ctx)
		return explorer.ProjectsLoadedMsg{Records: records, Err: err}
	}
}

func (m *browseModel) CapturingInput() bool {
	return m.results.CapturingInput()
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case explorer.ProjectsLoadedMsg:
		m.loaded = true
		m.err = msg.Err
		m.empty = msg.Err == nil && len(msg.Records) == 0
		m.results.SetRecords(msg.Records)
		return m, nil

	case explorer.CopiedMsg:
		if msg.Err != nil {
			m.notice = errorStyle.Render(fmt.Sprintf("Could not copy: %v", msg.Err))
		} else {
			m.notice = successStyle.Render("Copied " + msg.Text)
		}
		return m, nil

	case tea.KeyMsg:
		if m.results.CapturingInput() {
			_, cmd := m.results.HandleKey(msg)
			return m, cmd
		}
		if msg.String() == "r" {
			m.loaded = false
			m.notice = ""
			return m, m.load()
		}
		if !m.loaded || m.err != nil {
			return m, nil
		}
		if _, cmd := m.results.HandleKey(msg); cmd != nil {
			return m, cmd
		}
	}

	return m, nil
}

func (m *browseModel) View() string {
	if !m.loaded {
		return renderLoadingState("Loading projects...")
	}
	if m.err != nil {
		return "\n" + errorStyle.Render(userFacingError(m.err)) + "\n\n" +
			helpStyle.Render("Press 'r' to retry, 'm' for menu.") + "\n"
	}
	if m.empty {
		return renderEmptyState("No projects found.")
	}

	width := m.width
	if width <= 0 {
		width = explorer.DefaultWidth
	}
	s := m.results.View(width)
	if m.notice != "" {
		s += "\n" + m.notice + "\n"
	}
	return s
}
