package pipeline

import (
	"errors"
	"fmt"
)

// Fatal preflight and execution conditions.
var (
	ErrNotWorkTree     = errors.New("not inside a git working tree")
	ErrDirtyWorkTree   = errors.New("working tree has uncommitted changes")
	ErrNoRemote        = errors.New("no git remote configured")
	ErrDetachedHead    = errors.New("HEAD is detached; there is no branch to push")
	ErrReleaseHostAuth = errors.New("release host is not authenticated")
	ErrTagExists       = errors.New("tag already exists")
	ErrTestsFailed     = errors.New("tests failed")
	ErrAborted         = errors.New("release aborted by user")
	ErrUnpushedTag     = errors.New("a release needs the new tag on the remote; drop --no-push or add --no-release")
)

// StepError is a fatal failure at a specific step.
type StepError struct {
	Step Step
	Err  error

	// Mutated is set when local state (files, commit, tag) or remote state
	// was already changed before the failure.
	Mutated bool

	// Hint tells the operator how to recover, when a targeted recovery exists.
	Hint string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("release failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step err failed at, if err is a *StepError.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return 0, false
}
