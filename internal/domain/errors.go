package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lifecycle core - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("workflow not active")
	ErrStepMismatch = errors.New("step mismatch")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// StepMismatchError reports an action submitted against a stale view of the
// workflow: the caller's step number no longer matches the current step.
type StepMismatchError struct {
	WorkflowID string
	Submitted  int
	Current    int
}

func (e *StepMismatchError) Error() string {
	return fmt.Sprintf("workflow %s is at step %d, action submitted for step %d", e.WorkflowID, e.Current, e.Submitted)
}

// Is allows errors.Is() to match against ErrStepMismatch
func (e *StepMismatchError) Is(target error) bool {
	return target == ErrStepMismatch
}

// InvalidStateError reports an action submitted against a workflow that is
// not in progress. Terminal workflows never accept further actions.
type InvalidStateError struct {
	WorkflowID string
	Status     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("workflow %s is %s and accepts no further actions", e.WorkflowID, e.Status)
}

// Is allows errors.Is() to match against ErrInvalidState
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ConflictError represents a resource conflict with details about the
// existing resource (e.g. a second active workflow for the same document).
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
