package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/cli/tui"
	"buidl-explorer-go/pkg/config"
	"buidl-explorer-go/pkg/jobs"
	"buidl-explorer-go/pkg/models"
	"buidl-explorer-go/pkg/scraper"
)

type App struct {
	cfg        *config.Config
	configPath string
	service    *scraper.Service

	out    io.Writer
	errOut io.Writer

	confirmFunc func(title string) (bool, error)
	pickFunc    func(records []models.ProjectRecord) (*models.ProjectRecord, error)
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetOutput redirects command output, mainly for tests
func (a *App) SetOutput(out, errOut io.Writer) {
	a.out = out
	a.errOut = errOut
}

// SetConfigPath makes SetConfig write to path instead of the default location
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// getService returns the backend client, creating it if necessary
func (a *App) getService() (*scraper.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	if a.cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL not configured")
	}

	svc, err := scraper.NewService(a.cfg.Backend.BaseURL, scraper.WithRequestTimeout(a.cfg.RequestTimeout()))
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	a.service = svc
	return a.service, nil
}

// newController wires a job controller to the backend on the given loop
func (a *App) newController(svc *scraper.Service, loop *jobs.Loop) *jobs.Controller {
	return jobs.NewController(svc, svc, loop,
		jobs.WithLogger(logger.Logger()),
		jobs.WithStreamTimeout(a.cfg.StreamTimeout()),
	)
}

// RunTUI starts the interactive explorer and blocks until it exits
func (a *App) RunTUI(ctx context.Context) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := jobs.NewLoop()
	ctrl := a.newController(svc, loop)
	defer ctrl.Shutdown()

	model := tui.NewRootModel(ctx, ctrl, svc, a.cfg.CLI.DownloadDir)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// controller callbacks run inside Update, never on the stream goroutine
	go loop.Pump(ctx, func(fn func()) {
		p.Send(tui.DispatchMsg{Fn: fn})
	})

	logger.Info("tui started", "base_url", svc.BaseURL())
	_, err = p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	logger.Info("tui stopped")
	return nil
}
