package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/cli/projects"
	"buidl-explorer-go/pkg/models"
)

// ErrDownloadSkipped is returned when the user declines to overwrite a file.
var ErrDownloadSkipped = errors.New("download skipped")

// DownloadOptions controls where the export artifact is written
type DownloadOptions struct {
	// Output is the destination file; empty uses the download dir and the
	// name the backend suggests.
	Output string
	Force  bool
}

// ListProjects prints the current result set without starting a job
func (a *App) ListProjects(ctx context.Context, search string) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	records, err := svc.FetchResults(ctx)
	if err != nil {
		logger.LogError(err, "list projects failed")
		return fmt.Errorf("failed to fetch projects: %w", err)
	}

	shown := projects.Filter(records, search)
	fmt.Fprint(a.out, projects.FormatTableOutput(shown))
	if search != "" {
		fmt.Fprintln(a.out, projects.FormatSearchSummary(len(shown), len(records), search))
	}
	return nil
}

// Download saves the export artifact and returns the path written.
func (a *App) Download(ctx context.Context, opts DownloadOptions) (string, error) {
	svc, err := a.getService()
	if err != nil {
		return "", err
	}

	dir := a.cfg.CLI.DownloadDir
	if opts.Output != "" {
		dir = filepath.Dir(opts.Output)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".buidl-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	name, err := svc.Download(ctx, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write temp file: %w", closeErr)
	}
	if err != nil {
		logger.LogError(err, "download failed")
		return "", err
	}

	target := opts.Output
	if target == "" {
		target = filepath.Join(dir, name)
	}

	if _, err := os.Stat(target); err == nil && !opts.Force {
		ok, err := a.confirm(fmt.Sprintf("%s already exists. Overwrite?", target))
		if err != nil {
			return "", fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			fmt.Fprintln(a.out, "Download skipped.")
			return "", ErrDownloadSkipped
		}
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", target, err)
	}
	logger.Info("export downloaded", "path", target)
	fmt.Fprintf(a.out, "✓ Saved %s\n", target)
	return target, nil
}

// Status checks that the backend is reachable
func (a *App) Status(ctx context.Context) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "⏳ Checking backend at %s... ", svc.BaseURL())
	if err := svc.CheckHealth(ctx); err != nil {
		fmt.Fprintln(a.out, "✗")
		return fmt.Errorf("backend unavailable: %w\n\nStart the development backend with: buidl-api", err)
	}
	fmt.Fprintln(a.out, "✓")
	return nil
}

// confirm asks a yes/no question; tests replace it through confirmFunc.
func (a *App) confirm(title string) (bool, error) {
	if a.confirmFunc != nil {
		return a.confirmFunc(title)
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Overwrite").
				Negative("Keep").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// pick lets the user choose one record from records
func (a *App) pick(records []models.ProjectRecord) (*models.ProjectRecord, error) {
	if a.pickFunc != nil {
		return a.pickFunc(records)
	}

	var selected int
	options := make([]huh.Option[int], len(records))
	for i, r := range records {
		label := projects.Truncate(projects.DisplayName(r), 60)
		if org := projects.Organization(r); org != "N/A" {
			label = fmt.Sprintf("%s - %s", label, projects.Truncate(org, 30))
		}
		options[i] = huh.NewOption(label, i)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Choose a project to inspect:").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}
	return &records[selected], nil
}
