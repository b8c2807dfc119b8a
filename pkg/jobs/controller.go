package jobs

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"buidl-explorer-go/pkg/models"
	"buidl-explorer-go/pkg/scraper"
)

// ErrJobInProgress is returned by Start while a job is still streaming.
var ErrJobInProgress = errors.New("a scrape job is already running")

// StreamOpener opens the progress stream of a new job.
type StreamOpener interface {
	Open(ctx context.Context, h scraper.Handlers) scraper.Subscription
}

// ResultFetcher retrieves the finalized result set of the last job.
type ResultFetcher interface {
	FetchResults(ctx context.Context) ([]models.ProjectRecord, error)
}

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStreamTimeout fails a job whose stream has not completed within d.
// Zero disables the timeout.
func WithStreamTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.streamTimeout = d
	}
}

// Controller drives the job lifecycle. Apart from NewController, every
// method must be called on the dispatcher's execution context; stream and
// fetch callbacks are posted back onto it.
type Controller struct {
	streams       StreamOpener
	fetcher       ResultFetcher
	dispatch      Dispatcher
	logger        *log.Logger
	streamTimeout time.Duration

	state        State
	generation   uint64
	jobID        uuid.UUID
	logs         *LogBuffer
	results      *ResultStore
	resultStatus ResultStatus
	err          error

	sub        scraper.Subscription
	jobCtx     context.Context
	cancelJob  context.CancelFunc
	stopStream context.CancelFunc

	listeners []func(Snapshot)
}

func NewController(streams StreamOpener, fetcher ResultFetcher, dispatch Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		streams:  streams,
		fetcher:  fetcher,
		dispatch: dispatch,
		logger:   log.New(io.Discard),
		logs:     NewLogBuffer(),
		results:  NewResultStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.listeners = append(c.listeners, fn)
}

// Start begins a new job: the previous job's log, results and error are
// cleared and a fresh progress stream is opened. It returns immediately.
func (c *Controller) Start(ctx context.Context) error {
	if c.state == StateStreaming {
		return ErrJobInProgress
	}

	// abandon a result fetch the previous job may still have in flight
	if c.cancelJob != nil {
		c.cancelJob()
	}

	c.logs.Clear()
	c.results.Clear()
	c.resultStatus = ResultsNone
	c.err = nil

	c.generation++
	c.jobID = uuid.New()
	gen := c.generation

	jobCtx, cancelJob := context.WithCancel(ctx)
	var streamCtx context.Context
	var stopStream context.CancelFunc
	if c.streamTimeout > 0 {
		streamCtx, stopStream = context.WithTimeout(jobCtx, c.streamTimeout)
	} else {
		streamCtx, stopStream = context.WithCancel(jobCtx)
	}
	c.jobCtx, c.cancelJob, c.stopStream = jobCtx, cancelJob, stopStream

	c.state = StateStreaming
	c.logger.Info("job started", "job_id", c.jobID, "generation", gen)

	c.sub = c.streams.Open(streamCtx, scraper.Handlers{
		OnLine: func(text string) {
			c.dispatch.Post(func() { c.handleLine(gen, text) })
		},
		OnDone: func() {
			c.dispatch.Post(func() { c.handleDone(gen) })
		},
		OnError: func(err error) {
			c.dispatch.Post(func() { c.handleError(gen, err) })
		},
	})

	c.notify()
	return nil
}

// Snapshot returns a copy of the current state record.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:      c.state,
		JobID:      c.jobID,
		Generation: c.generation,
		Logs:       c.logs.Lines(),
		Records:    c.results.Records(),
		Results:    c.resultStatus,
		Err:        c.err,
	}
}

// Shutdown abandons the current job. No further callbacks are applied.
func (c *Controller) Shutdown() {
	c.generation++
	if c.state == StateStreaming {
		c.finish(StateIdle)
	}
	if c.cancelJob != nil {
		c.cancelJob()
		c.cancelJob = nil
	}
	if c.resultStatus == ResultsLoading {
		c.resultStatus = ResultsNone
	}
	c.logger.Debug("controller shut down", "job_id", c.jobID)
}

// streaming reports whether an event tagged gen belongs to the live job.
func (c *Controller) streaming(gen uint64) bool {
	return gen == c.generation && c.state == StateStreaming
}

func (c *Controller) handleLine(gen uint64, text string) {
	if !c.streaming(gen) {
		c.logger.Debug("discarding stale line", "generation", gen)
		return
	}
	c.logs.Append(text)
	c.notify()
}

func (c *Controller) handleDone(gen uint64) {
	if !c.streaming(gen) {
		c.logger.Debug("discarding stale done", "generation", gen)
		return
	}
	c.finish(StateSucceeded)
	c.resultStatus = ResultsLoading
	c.logger.Info("job succeeded, fetching results", "job_id", c.jobID, "lines", c.logs.Len())

	ctx := c.jobCtx
	c.dispatch.Go(func() {
		records, err := c.fetcher.FetchResults(ctx)
		c.dispatch.Post(func() { c.handleFetched(gen, records, err) })
	})
	c.notify()
}

func (c *Controller) handleError(gen uint64, err error) {
	if !c.streaming(gen) {
		c.logger.Debug("discarding stale error", "generation", gen, "err", err)
		return
	}
	c.finish(StateFailed)
	c.err = err
	c.logger.Error("job failed", "job_id", c.jobID, "err", err)
	c.notify()
}

func (c *Controller) handleFetched(gen uint64, records []models.ProjectRecord, err error) {
	if gen != c.generation || c.resultStatus != ResultsLoading {
		c.logger.Debug("discarding stale results", "generation", gen)
		return
	}

	if err != nil {
		c.results.Clear()
		c.resultStatus = ResultsUnavailable
		c.err = err
		c.logger.Error("result fetch failed", "job_id", c.jobID, "err", err)
		c.notify()
		return
	}

	c.results.Replace(records)
	if c.results.Len() == 0 {
		c.resultStatus = ResultsEmpty
	} else {
		c.resultStatus = ResultsLoaded
	}
	c.logger.Info("results loaded", "job_id", c.jobID, "records", c.results.Len())
	c.notify()
}

// finish is the only way out of StateStreaming. It closes the subscription
// exactly once whichever terminal event arrived.
func (c *Controller) finish(next State) {
	c.state = next
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	if c.stopStream != nil {
		c.stopStream()
		c.stopStream = nil
	}
}

func (c *Controller) notify() {
	if len(c.listeners) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.listeners {
		fn(snap)
	}
}
