package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"buidl-explorer-go/pkg/cli/logger"
)

// Downloader fetches the export artifact
type Downloader interface {
	Download(ctx context.Context, w io.Writer) (string, error)
}

// saveExport downloads the artifact into dir under the backend's file name,
// replacing an older copy only once the new one is complete.
func saveExport(ctx context.Context, d Downloader, dir string) (string, error) {
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

	name, err := d.Download(ctx, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", target, err)
	}
	logger.Info("export downloaded", "path", target)
	return target, nil
}
