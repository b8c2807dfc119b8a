package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrScrapeRunning is returned when a scrape is requested while one is active.
var ErrScrapeRunning = errors.New("a scrape is already running")

// LineRunner runs a scrape and reports its output one line at a time.
type LineRunner interface {
	Run(ctx context.Context, emit func(line string)) error
}

// CommandRunner runs the scraper as a child process and emits its combined
// stdout and stderr line by line.
type CommandRunner struct {
	name string
	args []string
	dir  string
}

func NewCommandRunner(command, dir string) (*CommandRunner, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("scraper command is empty")
	}
	return &CommandRunner{name: fields[0], args: fields[1:], dir: dir}, nil
}

func (r *CommandRunner) Run(ctx context.Context, emit func(line string)) error {
	cmd := exec.CommandContext(ctx, r.name, r.args...)
	cmd.Dir = r.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to scraper output: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start scraper: %w", err)
	}

	scanErr := scanLines(stdout, emit)
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("scraper exited: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read scraper output: %w", scanErr)
	}
	return nil
}

func scanLines(r io.Reader, emit func(line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		emit(strings.TrimSpace(scanner.Text()))
	}
	return scanner.Err()
}

// ScrapeService allows one scrape at a time.
type ScrapeService struct {
	runner LineRunner
	logger *log.Logger

	mu      sync.Mutex
	running bool
}

func NewScrapeService(runner LineRunner, logger *log.Logger) *ScrapeService {
	return &ScrapeService{runner: runner, logger: logger}
}

// Reserve claims the service for one scrape, or returns ErrScrapeRunning if
// another scrape holds it. The claim ends when the returned Scrape runs or is
// released.
func (s *ScrapeService) Reserve() (*Scrape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrScrapeRunning
	}
	s.running = true
	return &Scrape{service: s}, nil
}

// Run executes a scrape, or returns ErrScrapeRunning without starting one.
func (s *ScrapeService) Run(ctx context.Context, emit func(line string)) error {
	scrape, err := s.Reserve()
	if err != nil {
		return err
	}
	return scrape.Run(ctx, emit)
}

func (s *ScrapeService) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Running reports whether a scrape is in progress
func (s *ScrapeService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Scrape is a reserved scrape. Run may be called once.
type Scrape struct {
	service *ScrapeService
	once    sync.Once
	used    bool
}

func (r *Scrape) Run(ctx context.Context, emit func(line string)) error {
	if r.used {
		return ErrScrapeRunning
	}
	r.used = true
	defer r.Release()

	s := r.service
	s.logger.Info("scrape started")
	lines := 0
	err := s.runner.Run(ctx, func(line string) {
		lines++
		emit(line)
	})
	if err != nil {
		s.logger.Error("scrape failed", "lines", lines, "err", err)
		return err
	}
	s.logger.Info("scrape finished", "lines", lines)
	return nil
}

// Release gives the reservation back. Calling it more than once is a no-op.
func (r *Scrape) Release() {
	r.once.Do(r.service.release)
}
