package jobs

import (
	"errors"

	"github.com/google/uuid"

	"buidl-explorer-go/pkg/models"
	"buidl-explorer-go/pkg/scraper"
)

// State is the lifecycle position of the current job.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no more stream events are expected.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ResultStatus tracks the result retrieval that follows a successful job.
type ResultStatus int

const (
	ResultsNone ResultStatus = iota
	ResultsLoading
	ResultsLoaded
	// ResultsEmpty is a successful retrieval of zero records.
	ResultsEmpty
	// ResultsUnavailable means the job succeeded but retrieval failed.
	ResultsUnavailable
)

func (r ResultStatus) String() string {
	switch r {
	case ResultsNone:
		return "none"
	case ResultsLoading:
		return "loading"
	case ResultsLoaded:
		return "loaded"
	case ResultsEmpty:
		return "empty"
	case ResultsUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the controller's state record, safe to keep and read
// from any goroutine.
type Snapshot struct {
	State      State
	JobID      uuid.UUID
	Generation uint64
	Logs       []string
	Records    []models.ProjectRecord
	Results    ResultStatus
	Err        error
}

// CanStart reports whether a new job may be started.
func (s Snapshot) CanStart() bool {
	return s.State != StateStreaming
}

// CanExport reports whether the export artifact is expected to exist.
func (s Snapshot) CanExport() bool {
	return s.State == StateSucceeded
}

// Settled reports whether the job and its result retrieval are both over.
func (s Snapshot) Settled() bool {
	switch s.State {
	case StateFailed:
		return true
	case StateSucceeded:
		return s.Results != ResultsLoading
	default:
		return false
	}
}

// ErrorMessage is the single human-readable error line, or "".
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	var typed *scraper.Error
	if errors.As(s.Err, &typed) {
		return typed.UserMessage()
	}
	return s.Err.Error()
}
