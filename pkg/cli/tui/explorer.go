package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/cli/projects"
	"buidl-explorer-go/pkg/cli/tui/explorer"
	"buidl-explorer-go/pkg/jobs"
)

// explorerModel runs scrape jobs and shows their progress and results.
// It renders the controller's latest snapshot and never mutates job state
// itself; all changes go through the controller.
type explorerModel struct {
	ctx         context.Context
	ctrl        *jobs.Controller
	downloader  Downloader
	downloadDir string

	snap    jobs.Snapshot
	results *resultsPane
	logView viewport.Model
	spinner spinner.Model

	downloading bool
	notice      string
	noticeIsErr bool

	width int
}

// NewExplorerModel creates the scrape & explore flow. It subscribes to ctrl,
// so create one per controller.
func NewExplorerModel(
	ctx context.Context,
	ctrl *jobs.Controller,
	downloader Downloader,
	downloadDir string,
) tea.Model {
	return NewViewportWrapper(newExplorerModel(ctx, ctrl, downloader, downloadDir), ViewportConfig{
		Title:       "BUIDL Explorer",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: ExplorerHelpContent,
		MinWidth:    60,
		MinHeight:   20,
	})
}

func newExplorerModel(
	ctx context.Context,
	ctrl *jobs.Controller,
	downloader Downloader,
	downloadDir string,
) *explorerModel {
	logView := viewport.New(explorer.DefaultWidth-4, explorer.LogHeight)

	m := &explorerModel{
		ctx:         ctx,
		ctrl:        ctrl,
		downloader:  downloader,
		downloadDir: downloadDir,
		results:     newResultsPane(),
		logView:     logView,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(infoStyle)),
	}
	m.applySnapshot(ctrl.Snapshot())
	ctrl.OnChange(m.applySnapshot)
	return m
}

func (m *explorerModel) Init() tea.Cmd {
	if m.busy() {
		return m.spinner.Tick
	}
	return nil
}

// applySnapshot runs on the update loop for every controller state change
func (m *explorerModel) applySnapshot(s jobs.Snapshot) {
	prev := m.snap
	m.snap = s

	lines := make([]string, len(s.Logs))
	for i, line := range s.Logs {
		lines[i] = logLineStyle.Render(projects.CleanText(line))
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	m.logView.GotoBottom()

	if s.Generation != prev.Generation || s.Results != prev.Results {
		m.results.SetRecords(s.Records)
	}
	if s.Generation != prev.Generation {
		m.clearNotice()
	}
}

func (m *explorerModel) busy() bool {
	return m.snap.State == jobs.StateStreaming || m.snap.Results == jobs.ResultsLoading || m.downloading
}

// CapturingInput reports whether the search box or details view owns the keyboard
func (m *explorerModel) CapturingInput() bool {
	return m.results.CapturingInput()
}

func (m *explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width == 0 {
			m.width = explorer.DefaultWidth
		}
		m.logView.Width = m.getMaxWidth() - 4
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case explorer.DownloadDoneMsg:
		m.downloading = false
		if msg.Err != nil {
			logger.LogError(msg.Err, "export download failed")
			m.setNotice(userFacingError(msg.Err), true)
			return m, nil
		}
		m.setNotice(fmt.Sprintf("Saved %s", msg.Path), false)
		return m, nil

	case explorer.CopiedMsg:
		if msg.Err != nil {
			m.setNotice(fmt.Sprintf("Could not copy: %v", msg.Err), true)
			return m, nil
		}
		m.setNotice("Copied "+msg.Text, false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m *explorerModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.results.CapturingInput() {
		_, cmd := m.results.HandleKey(msg)
		return m, cmd
	}

	switch msg.String() {
	case "s":
		return m, m.startJob()
	case "d":
		return m, m.download()
	}

	if handled, cmd := m.results.HandleKey(msg); handled {
		return m, cmd
	}
	if handleQuitKeys(msg.String()) {
		return m, tea.Quit
	}
	return m, nil
}

func (m *explorerModel) startJob() tea.Cmd {
	if !m.snap.CanStart() {
		m.setNotice("A scrape is already running.", false)
		return nil
	}
	if err := m.ctrl.Start(m.ctx); err != nil {
		logger.LogError(err, "job start rejected")
		m.setNotice(err.Error(), true)
		return nil
	}
	logger.Log("job started from tui", "job_id", m.snap.JobID)
	return m.spinner.Tick
}

func (m *explorerModel) download() tea.Cmd {
	if !m.snap.CanExport() {
		m.setNotice("The export is available after a successful scrape.", false)
		return nil
	}
	if m.downloading {
		return nil
	}
	m.downloading = true
	m.clearNotice()

	ctx, d, dir := m.ctx, m.downloader, m.downloadDir
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		path, err := saveExport(ctx, d, dir)
		return explorer.DownloadDoneMsg{Path: path, Err: err}
	})
}

func (m *explorerModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeIsErr = isErr
}

func (m *explorerModel) clearNotice() {
	m.notice = ""
	m.noticeIsErr = false
}

// getMaxWidth returns the maximum width for rendering, using DefaultWidth as fallback
func (m *explorerModel) getMaxWidth() int {
	if m.width > 0 {
		return m.width
	}
	return explorer.DefaultWidth
}

func (m *explorerModel) View() string {
	maxWidth := m.getMaxWidth()

	var b strings.Builder
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.snap.State != jobs.StateIdle || len(m.snap.Logs) > 0 {
		b.WriteString(boldStyle.Render("Progress") + "\n")
		b.WriteString(logBoxStyle.Width(maxWidth - 2).Render(m.logView.View()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderResults(maxWidth))

	if m.notice != "" {
		b.WriteString("\n")
		if m.noticeIsErr {
			b.WriteString(errorStyle.Render(m.notice))
		} else {
			b.WriteString(successStyle.Render(m.notice))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.keyHints()) + "\n")
	return b.String()
}

func (m *explorerModel) renderStatus() string {
	switch m.snap.State {
	case jobs.StateStreaming:
		return fmt.Sprintf("%s %s", m.spinner.View(),
			infoStyle.Render(fmt.Sprintf("Scraping... %d line(s) received", len(m.snap.Logs))))
	case jobs.StateSucceeded:
		return renderSuccess("Scrape complete")
	case jobs.StateFailed:
		return errorStyle.Render(m.snap.ErrorMessage())
	default:
		return mutedStyle.Render("Press 's' to start a scrape.")
	}
}

// renderResults shows the result area for the current result status. The
// only error line on screen is either the job failure in the status line or
// the retrieval failure here.
func (m *explorerModel) renderResults(maxWidth int) string {
	switch m.snap.Results {
	case jobs.ResultsLoading:
		return m.spinner.View() + " " + infoStyle.Render("Loading project data...") + "\n"
	case jobs.ResultsUnavailable:
		return errorStyle.Render(m.snap.ErrorMessage()) + "\n"
	case jobs.ResultsEmpty:
		return renderEmptyState("No projects found.")
	case jobs.ResultsLoaded:
		return m.results.View(maxWidth)
	default:
		return ""
	}
}

func (m *explorerModel) keyHints() string {
	if m.results.CapturingInput() {
		if m.results.step == explorer.StepDetails {
			return "enter/esc back • y copy URL"
		}
		return "type to filter • enter/esc done"
	}

	hints := []string{}
	if m.snap.CanStart() {
		hints = append(hints, "s scrape")
	}
	if m.snap.Results == jobs.ResultsLoaded {
		hints = append(hints, "/ search", "↑/↓ select", "enter details", "y copy URL")
	}
	if m.snap.CanExport() {
		hints = append(hints, "d download")
	}
	return strings.Join(hints, " • ")
}
