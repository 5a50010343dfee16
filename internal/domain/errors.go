package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error phases.
const (
	PhaseConfig = "config"
	PhaseSchema = "schema"
	PhaseParse  = "parse"
	PhaseIO     = "io"
	PhaseAuth   = "auth"
	PhaseUpload = "upload"
	PhaseWrite  = "write"
)

// SyncError is the base error type with context.
type SyncError struct {
	Phase      string // one of the Phase* constants
	File       string
	Message    string
	Suggestion string // optional hint telling the user how to fix the problem
	Cause      error
}

func (e *SyncError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// NewError creates a new SyncError.
func NewError(phase, file, message string, cause error) *SyncError {
	return &SyncError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// NewErrorWithSuggestion creates a new SyncError carrying a fix-it hint.
func NewErrorWithSuggestion(phase, file, message, suggestion string, cause error) *SyncError {
	return &SyncError{
		Phase:      phase,
		File:       file,
		Message:    message,
		Suggestion: suggestion,
		Cause:      cause,
	}
}

// IsPhase reports whether any SyncError in err's chain belongs to phase.
func IsPhase(err error, phase string) bool {
	for err != nil {
		var se *SyncError
		if !errors.As(err, &se) {
			return false
		}
		if se.Phase == phase {
			return true
		}
		err = se.Cause
	}
	return false
}

// HTTPError is returned for non-2xx responses from the Xray API.
type HTTPError struct {
	Status     int
	Message    string // best-effort message extracted from the body
	Body       []byte
	RetryAfter time.Duration // from the Retry-After header, zero when absent
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}
