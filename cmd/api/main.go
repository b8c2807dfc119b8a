package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"buidl-explorer-go/pkg/api"
	"buidl-explorer-go/pkg/config"
	"buidl-explorer-go/pkg/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "api",
	})

	app := &cli.Command{
		Name:  "buidl-api",
		Usage: "local backend serving scrape progress, project data and the export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "environment file path", Value: ".env"},
			&cli.StringFlag{Name: "host", Usage: "listen host (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "listen port (default from config)"},
			&cli.StringFlag{Name: "data", Usage: "merged project JSON file"},
			&cli.StringFlag{Name: "export", Usage: "spreadsheet export file"},
			&cli.StringFlag{Name: "scraper-cmd", Usage: "command that runs the scraper"},
			&cli.BoolFlag{Name: "verbose", Usage: "debug logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("verbose") {
				logger.SetLevel(log.DebugLevel)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, logger)
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatal("api server failed", "err", err)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.LoadEnvFile(cmd.String("env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.IsSet("host") {
		cfg.API.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.API.Port = cmd.Int("port")
	}
	if cmd.IsSet("data") {
		cfg.API.DataPath = cmd.String("data")
	}
	if cmd.IsSet("export") {
		cfg.API.ExportPath = cmd.String("export")
	}
	if cmd.IsSet("scraper-cmd") {
		cfg.API.ScraperCommand = cmd.String("scraper-cmd")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	runner, err := services.NewCommandRunner(cfg.API.ScraperCommand, "")
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(
		services.NewScrapeService(runner, logger),
		services.NewFileStore(cfg.API.DataPath, cfg.API.ExportPath),
		logger,
	)

	// No WriteTimeout: /api/scrape stays open for the whole scrape.
	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting", "addr", srv.Addr, "data", cfg.API.DataPath, "export", cfg.API.ExportPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
