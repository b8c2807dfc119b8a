package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	logger  = log.New(io.Discard)
	logFile *os.File
)

// Init starts writing logs to a timestamped file under dir. The terminal
// belongs to the TUI, so nothing is ever written to stdout or stderr.
func Init(dir string, verbose bool) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if dir == "" {
		dir = "tmp"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("cli-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}

	if logFile != nil {
		logFile.Close()
	}
	logFile = f

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		ReportCaller:    verbose,
		Prefix:          "cli",
		Level:           level,
	})
	return path, nil
}

// Logger returns the shared logger for components that take one explicitly.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a debug message
func Log(msg string, keyvals ...interface{}) {
	Logger().Debug(msg, keyvals...)
}

// Info writes an informational message
func Info(msg string, keyvals ...interface{}) {
	Logger().Info(msg, keyvals...)
}

// LogError writes an error message with err attached
func LogError(err error, msg string, keyvals ...interface{}) {
	Logger().Error(msg, append(keyvals, "err", err)...)
}

// CloseLog closes the log file and goes back to discarding output
func CloseLog() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = log.New(io.Discard)
}
