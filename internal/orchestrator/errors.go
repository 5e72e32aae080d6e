package orchestrator

import (
	"errors"
	"fmt"

	"github.com/gitquickmerge/quickmerge/internal/git"
)

var (
	ErrNoRepository     = git.ErrNoRepository
	ErrNoCurrentBranch  = errors.New("no current branch (HEAD is detached)")
	ErrNoRemote         = errors.New("no remote repository configured")
	ErrNoTargetBranches = errors.New("no other local branches to merge into")
	ErrCheckoutFailed   = errors.New("checkout failed")
	ErrPullFailed       = errors.New("pull failed")
	ErrMergeFailed      = errors.New("merge failed")
	ErrPushFailed       = errors.New("push failed")
	ErrUserCancelled    = errors.New("cancelled by user")
	ErrStashFailed      = errors.New("stash failed")
	ErrSkipped          = errors.New("skipped after interrupt")
	ErrBusy             = errors.New("another operation is already running for this repository")
	ErrMergeInProgress  = errors.New("a merge is already in progress")
)

// StepError ties a gateway failure to the workflow step that hit it. It matches
// both its Kind sentinel and the underlying error.
type StepError struct {
	Kind   error
	Branch string
	Err    error
}

func (e *StepError) Error() string {
	if e.Branch == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v on %s: %v", e.Kind, e.Branch, e.Err)
}

func (e *StepError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
