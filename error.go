package mmlmp3

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is returned when request is rejected before any stage.
	ErrValidation = errors.New("validation failed")
	// ErrSourceNotFound is returned when source file doesn't exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrCompile is returned when notation can't be compiled into events.
	ErrCompile = errors.New("compile failed")
)

// StageError is returned when one of the conversion stages failed. It
// wraps the stage error, so sentinel errors of stage packages can be
// checked with errors.Is.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

// Unwrap returns stage error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// cleanupErrors collects failures of artifact removal. They are only
// logged, never returned from a run.
type cleanupErrors []error

func (e cleanupErrors) Error() string {
	s := make([]string, 0, len(e))
	for _, ce := range e {
		s = append(s, ce.Error())
	}
	return strings.Join(s, "; ")
}

// ret returns untyped nil if nothing failed.
func (e cleanupErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
