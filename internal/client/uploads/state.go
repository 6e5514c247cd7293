package uploads

import (
	"errors"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

// State is the client-side lifecycle position of one upload.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateUploaded
	StateTriggering
	StatePolling
	StateCompleted
	StateFailed
	StateTimedOut
	StateErrored
	StateCancelled
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateUploading:  "uploading",
	StateUploaded:   "uploaded",
	StateTriggering: "triggering",
	StatePolling:    "polling",
	StateCompleted:  "completed",
	StateFailed:     "failed",
	StateTimedOut:   "timed out",
	StateErrored:    "errored",
	StateCancelled:  "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// IsFinal reports whether no further transitions happen from s.
func (s State) IsFinal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateErrored, StateCancelled:
		return true
	}
	return false
}

var (
	// ErrProcessingFailed: the backend settled the upload as failed.
	ErrProcessingFailed = errors.New("processing failed")
	// ErrCancelled: polling was stopped by Cancel, Delete, a re-trigger or Close.
	ErrCancelled = errors.New("polling cancelled")
	// ErrClosed: the controller no longer accepts work.
	ErrClosed = errors.New("controller closed")
)

// Outcome is a snapshot of a task. Once the task is done it is final.
type Outcome struct {
	State  State
	Upload *models.Upload // last observed upload, nil before the first poll
	Err    error
	Ticks  int // number of status fetches issued
}

// Event is delivered to an Observer on every transition and every polled
// status.
type Event struct {
	UploadID string
	State    State
	Upload   *models.Upload
	Err      error
}

// Observer receives events. It is called from polling goroutines and must
// not block for long.
type Observer func(Event)
