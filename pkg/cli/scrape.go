package cli

import (
	"context"
	"errors"
	"fmt"

	"buidl-explorer-go/pkg/cli/logger"
	"buidl-explorer-go/pkg/cli/projects"
	"buidl-explorer-go/pkg/jobs"
)

var (
	// ErrJobFailed means the scrape job itself did not complete.
	ErrJobFailed = errors.New("scrape job failed")
	// ErrResultsUnavailable means the job completed but its results could not be loaded.
	ErrResultsUnavailable = errors.New("scrape results unavailable")
)

// ScrapeOptions controls the headless scrape command
type ScrapeOptions struct {
	Search   string
	Pick     bool
	Download bool
	Output   string
	Force    bool
}

// Scrape runs one job without the TUI: progress lines go to stdout as they
// arrive and the results are printed as a table once the job settles.
func (a *App) Scrape(ctx context.Context, opts ScrapeOptions) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	loop := jobs.NewLoop()
	ctrl := a.newController(svc, loop)
	defer ctrl.Shutdown()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	printed := 0
	var final jobs.Snapshot
	settled := false
	ctrl.OnChange(func(s jobs.Snapshot) {
		for _, line := range s.Logs[printed:] {
			fmt.Fprintln(a.out, line)
		}
		printed = len(s.Logs)
		if s.Settled() {
			final = s
			settled = true
			stop()
		}
	})

	fmt.Fprintf(a.out, "⏳ Scraping via %s ...\n", svc.BaseURL())
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	// returns once the job settles or ctx is cancelled
	_ = loop.Run(runCtx)

	if !settled {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("scrape stopped before the job settled")
	}
	logger.Info("headless scrape settled", "job_id", final.JobID, "state", final.State, "results", final.Results)

	if final.State == jobs.StateFailed {
		fmt.Fprintln(a.errOut, final.ErrorMessage())
		return fmt.Errorf("%w: %v", ErrJobFailed, final.Err)
	}

	var resultErr error
	if final.Results == jobs.ResultsUnavailable {
		fmt.Fprintln(a.errOut, final.ErrorMessage())
		resultErr = fmt.Errorf("%w: %v", ErrResultsUnavailable, final.Err)
	} else {
		fmt.Fprintln(a.out, "✓ Scraping complete.")
		if err := a.printRecords(final, opts); err != nil {
			return err
		}
	}

	if opts.Download && final.CanExport() {
		if _, err := a.Download(ctx, DownloadOptions{Output: opts.Output, Force: opts.Force}); err != nil {
			return err
		}
	}
	return resultErr
}

func (a *App) printRecords(s jobs.Snapshot, opts ScrapeOptions) error {
	records := projects.Filter(s.Records, opts.Search)
	fmt.Fprint(a.out, projects.FormatTableOutput(records))
	if opts.Search != "" {
		fmt.Fprintln(a.out, projects.FormatSearchSummary(len(records), len(s.Records), opts.Search))
	}

	if !opts.Pick || len(records) == 0 {
		return nil
	}
	picked, err := a.pick(records)
	if err != nil {
		return fmt.Errorf("project selection failed: %w", err)
	}
	if picked != nil {
		fmt.Fprintln(a.out)
		fmt.Fprint(a.out, projects.FormatDetails(*picked))
	}
	return nil
}
