package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	explorer "buidl-explorer-go/pkg/cli"
	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/cli/projects"
	"buidl-explorer-go/pkg/config"
	"buidl-explorer-go/pkg/utils"
)

// Exit statuses of the headless scrape
const (
	exitJobFailed          = 2
	exitResultsUnavailable = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "buidl-explorer",
		Usage: "trigger BUIDL scrapes, watch their progress and explore the results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "environment file path", Value: ".env"},
			&cli.StringFlag{Name: "base-url", Usage: "backend base URL (default from config)"},
			&cli.BoolFlag{Name: "verbose", Usage: "debug logging to the log file"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
			return app.RunTUI(ctx)
		}),
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "run a scrape job without the TUI and print the results",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "only show projects whose name or org contains this text"},
					&cli.BoolFlag{Name: "pick", Usage: "choose a project interactively and show its details"},
					&cli.BoolFlag{Name: "download", Usage: "download the spreadsheet export after a successful job"},
					&cli.StringFlag{Name: "output", Usage: "export destination file"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing export without asking"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
					err := app.Scrape(ctx, explorer.ScrapeOptions{
						Search:   cmd.String("search"),
						Pick:     cmd.Bool("pick"),
						Download: cmd.Bool("download"),
						Output:   cmd.String("output"),
						Force:    cmd.Bool("force"),
					})
					switch {
					case errors.Is(err, explorer.ErrJobFailed):
						return cli.Exit(err.Error(), exitJobFailed)
					case errors.Is(err, explorer.ErrResultsUnavailable):
						return cli.Exit(err.Error(), exitResultsUnavailable)
					}
					return err
				}),
			},
			{
				Name:  "list",
				Usage: "show the results of the last completed scrape",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "only show projects whose name or org contains this text"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
					return app.ListProjects(ctx, cmd.String("search"))
				}),
			},
			{
				Name:  "download",
				Usage: "download the spreadsheet export",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Usage: "destination file (default: download dir + backend file name)"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file without asking"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
					_, err := app.Download(ctx, explorer.DownloadOptions{
						Output: cmd.String("output"),
						Force:  cmd.Bool("force"),
					})
					if errors.Is(err, explorer.ErrDownloadSkipped) {
						return nil
					}
					return err
				}),
			},
			{
				Name:  "status",
				Usage: "check that the backend is reachable",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
					return app.Status(ctx)
				}),
			},
			{
				Name:  "config",
				Usage: "show or change the configuration",
				Commands: []*cli.Command{
					{
						Name:  "show",
						Usage: "print the current configuration",
						Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
							return app.ShowConfig()
						}),
					},
					{
						Name:      "set",
						Usage:     "set a value, e.g. backend.base_url=http://localhost:5001",
						ArgsUsage: "section.key=value",
						Action: withApp(func(ctx context.Context, cmd *cli.Command, app *explorer.App) error {
							if cmd.Args().Len() != 1 {
								return fmt.Errorf("expected exactly one section.key=value argument")
							}
							if err := app.SetConfig(cmd.Args().First()); err != nil {
								return fmt.Errorf("failed to set config: %w", err)
							}
							fmt.Println("Configuration updated successfully")
							return nil
						}),
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		projects.WriteToStderr(projects.FormatErrorMessage(err))
		os.Exit(1)
	}
}

type appAction func(ctx context.Context, cmd *cli.Command, app *explorer.App) error

// withApp loads config and the log file before running action
func withApp(action appAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		verbose := cfg.CLI.Verbose || cmd.Bool("verbose")
		if _, err := logger.Init(cfg.CLI.LogDir, verbose); err != nil {
			return err
		}
		defer logger.CloseLog()
		logger.Log("command started", "command", cmd.FullName(), "base_url", cfg.Backend.BaseURL)

		return action(ctx, cmd, explorer.NewApp(cfg))
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

	if cmd.IsSet("base-url") {
		baseURL, err := utils.NormalizeBaseURL(cmd.String("base-url"))
		if err != nil {
			return nil, err
		}
		cfg.Backend.BaseURL = baseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
