package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/jobs"
)

// Backend is what the flows need from the scrape backend besides the job
// controller.
type Backend interface {
	Downloader
	ResultsSource
}

// rootModel is the Bubble Tea model that acts as an app shell for multiple flows.
// It presents a simple menu and then hands control to a specific flow model.
type rootModel struct {
	ctx     context.Context
	backend Backend

	// The explorer outlives menu navigation so a running job stays visible.
	explorer tea.Model

	// Current active flow (when nil, we are in the main menu)
	current  tea.Model
	size     *tea.WindowSizeMsg
	showHelp bool
}

// NewRootModel constructs the root app-shell model that can launch multiple flows.
func NewRootModel(
	ctx context.Context,
	ctrl *jobs.Controller,
	backend Backend,
	downloadDir string,
) tea.Model {
	return &rootModel{
		ctx:      ctx,
		backend:  backend,
		explorer: NewExplorerModel(ctx, ctrl, backend, downloadDir),
	}
}

func (m *rootModel) Init() tea.Cmd {
	// No async work on start; just render the menu.
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DispatchMsg:
		// controller callbacks apply regardless of which flow is showing
		msg.Fn()
		return m, nil

	case MenuNavigationMsg:
		logger.Log("returning to menu")
		m.current = nil
		return m, nil

	case tea.WindowSizeMsg:
		m.size = &msg
		// keep the explorer sized while it is hidden
		var cmd tea.Cmd
		m.explorer, cmd = m.explorer.Update(msg)
		if m.current != nil && m.current != m.explorer {
			var flowCmd tea.Cmd
			m.current, flowCmd = m.current.Update(msg)
			cmd = tea.Batch(cmd, flowCmd)
		}
		return m, cmd
	}

	// If we have an active flow, delegate all messages to it.
	if m.current != nil {
		updated, cmd := m.current.Update(msg)
		if m.current == m.explorer {
			m.explorer = updated
		}
		m.current = updated
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "?":
			m.showHelp = !m.showHelp
			return m, nil

		case "1":
			// Scrape & explore flow; keeps its job state across visits.
			return m, m.open(m.explorer)

		case "2":
			// Browse the results of the last completed scrape.
			return m, m.open(NewBrowseModel(m.ctx, m.backend))
		}
	}

	return m, nil
}

// open makes flow the active model, initializing it and giving it the
// current terminal size
func (m *rootModel) open(flow tea.Model) tea.Cmd {
	m.current = flow
	cmds := []tea.Cmd{flow.Init()}
	if m.size != nil {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(*m.size)
		cmds = append(cmds, cmd)
	}
	if flow == m.explorer {
		m.explorer = m.current
	}
	return tea.Batch(cmds...)
}

func (m *rootModel) View() string {
	// When a flow is active, defer to its view.
	if m.current != nil {
		return m.current.View()
	}

	var b strings.Builder

	b.WriteString(renderTitle("BUIDL Explorer"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Select an action:") + "\n\n")
	b.WriteString("  " + selectedMarkerStyle.Render("1)") + " Scrape & explore projects\n")
	b.WriteString("  " + selectedMarkerStyle.Render("2)") + " Browse last scrape results\n")
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Press the number of an option, '?' for help, or 'q' / Esc to quit.") + "\n")
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(RootMenuHelpContent())
	}

	return b.String()
}
