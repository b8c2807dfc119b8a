package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"buidl-explorer-go/pkg/cli/logger"
)

// inputCapturer is implemented by models that sometimes need q, esc, m and ?
// delivered to them instead of being treated as wrapper commands.
type inputCapturer interface {
	CapturingInput() bool
}

// ViewportWrapper wraps a model with viewport and common command support
type ViewportWrapper struct {
	model    tea.Model
	viewport viewport.Model
	width    int
	height   int
	config   ViewportConfig

	// Common commands
	showHelp    bool
	helpContent string
}

// ViewportConfig configures the wrapper behavior
type ViewportConfig struct {
	Title        string
	ShowHeader   bool
	ShowFooter   bool
	HeaderHeight int            // Fixed header height (0 = auto)
	FooterHeight int            // Fixed footer height (0 = auto)
	UseViewport  bool           // Clip to the terminal and page with pgup/pgdown
	MinWidth     int            // Minimum terminal width
	MinHeight    int            // Minimum terminal height
	EnableHelp   bool           // Enable '?' for help
	EnableMenu   bool           // Enable 'm' to return to menu
	HelpContent  func() string  // Function to generate help text
	OnMenu       func() tea.Cmd // Callback for menu command
}

// NewViewportWrapper creates a new wrapper around a model
func NewViewportWrapper(model tea.Model, config ViewportConfig) *ViewportWrapper {
	return &ViewportWrapper{
		model:    model,
		viewport: viewport.New(0, 0),
		config:   config,
		width:    80, // Default
		height:   24, // Default
	}
}

func (w *ViewportWrapper) Init() tea.Cmd {
	if w.model != nil {
		return w.model.Init()
	}
	return nil
}

// Inner returns the wrapped model
func (w *ViewportWrapper) Inner() tea.Model {
	return w.model
}

// CapturingInput forwards the wrapped model's input capture state
func (w *ViewportWrapper) CapturingInput() bool {
	if c, ok := w.model.(inputCapturer); ok {
		return c.CapturingInput()
	}
	return false
}

func (w *ViewportWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		logger.Log("wrapper resized", "title", w.config.Title, "width", msg.Width, "height", msg.Height)
		w.width = msg.Width
		w.height = msg.Height

		// Validate minimum size
		if w.config.MinWidth > 0 && w.width < w.config.MinWidth {
			w.width = w.config.MinWidth
		}
		if w.config.MinHeight > 0 && w.height < w.config.MinHeight {
			w.height = w.config.MinHeight
		}
		w.calculateLayout()

		var cmd tea.Cmd
		if w.model != nil {
			w.model, cmd = w.model.Update(msg)
		}
		return w, cmd

	case tea.KeyMsg:
		if handled, cmd := w.handleCommandKey(msg); handled {
			return w, cmd
		}
	}

	// Help overlay swallows everything else
	if w.showHelp {
		return w, nil
	}

	var cmd tea.Cmd
	if w.model != nil {
		w.model, cmd = w.model.Update(msg)
	}

	if w.config.UseViewport {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && isPagingKey(keyMsg.String()) {
			var vpCmd tea.Cmd
			w.viewport, vpCmd = w.viewport.Update(msg)
			cmd = tea.Batch(cmd, vpCmd)
		}
	}
	return w, cmd
}

// handleCommandKey applies the wrapper's own keys. Keys are left to the
// wrapped model while it captures input, except ctrl+c.
func (w *ViewportWrapper) handleCommandKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return true, tea.Quit
	}

	if w.showHelp {
		switch key {
		case "?", "esc", "q":
			w.showHelp = false
		}
		return true, nil
	}

	if w.CapturingInput() {
		return false, nil
	}

	switch key {
	case "?":
		if w.config.EnableHelp {
			w.showHelp = true
			if w.config.HelpContent != nil {
				w.helpContent = w.config.HelpContent()
			} else {
				w.helpContent = CommonHelpContent()
			}
			return true, nil
		}
	case "m":
		if w.config.EnableMenu {
			logger.Log("menu key pressed", "title", w.config.Title)
			if w.config.OnMenu != nil {
				return true, w.config.OnMenu()
			}
			return true, func() tea.Msg {
				return MenuNavigationMsg{}
			}
		}
	case "q", "esc":
		return true, tea.Quit
	}
	return false, nil
}

func isPagingKey(key string) bool {
	switch key {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		return true
	}
	return false
}

func (w *ViewportWrapper) View() string {
	if w.showHelp {
		return w.renderHelpOverlay()
	}

	content := ""
	if w.model != nil {
		content = w.model.View()
	}

	if w.config.UseViewport {
		w.calculateLayout()
		w.viewport.SetContent(content)
		content = w.viewport.View()
	}

	var parts []string
	if w.config.ShowHeader {
		parts = append(parts, w.renderHeader())
	}
	parts = append(parts, content)
	if w.config.ShowFooter {
		parts = append(parts, w.renderFooter())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (w *ViewportWrapper) calculateLayout() {
	headerH := w.config.HeaderHeight
	if headerH == 0 && w.config.ShowHeader {
		headerH = 4 // Title with margins plus the hint line
	}

	footerH := w.config.FooterHeight
	if footerH == 0 && w.config.ShowFooter {
		footerH = 1 // Default footer height
	}

	if w.width <= 0 {
		w.width = 80
	}
	if w.height <= 0 {
		w.height = 24
	}

	contentH := w.height - headerH - footerH
	if contentH < 1 {
		contentH = 1
	}

	w.viewport.Width = w.width
	w.viewport.Height = contentH
}

func (w *ViewportWrapper) renderHeader() string {
	var b strings.Builder

	if w.config.Title != "" {
		b.WriteString(renderTitle(w.config.Title))
	}

	// Breadcrumb or navigation hint
	if w.config.EnableMenu && w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press 'm' for menu, '?' for help") + "\n")
	} else if w.config.EnableHelp {
		b.WriteString(helpStyle.Render("Press '?' for help") + "\n")
	} else if w.config.EnableMenu {
		b.WriteString(helpStyle.Render("Press 'm' for menu") + "\n")
	}

	return b.String()
}

func (w *ViewportWrapper) renderFooter() string {
	shortcuts := []string{}

	if w.config.EnableHelp {
		shortcuts = append(shortcuts, "? help")
	}
	if w.config.EnableMenu {
		shortcuts = append(shortcuts, "m menu")
	}
	if w.config.UseViewport {
		shortcuts = append(shortcuts, "pgup/pgdn scroll")
	}
	shortcuts = append(shortcuts, "q quit")

	return helpStyle.Render(strings.Join(shortcuts, " • "))
}

func (w *ViewportWrapper) renderHelpOverlay() string {
	helpText := w.helpContent
	if helpText == "" {
		helpText = "No help available"
	}

	overlayStyle := lipgloss.NewStyle().
		Width(w.width-2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Foreground(lipgloss.Color("252"))

	title := titleStyle.Render("Keyboard Shortcuts")
	closeHint := helpStyle.Render("Press '?' or Esc to close")

	return overlayStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", helpText, "", closeHint),
	)
}
