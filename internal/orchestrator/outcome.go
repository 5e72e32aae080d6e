package orchestrator

import (
	"context"

	"github.com/gitquickmerge/quickmerge/internal/git"
)

// Workspace is the repository a single invocation runs against. It is resolved
// fresh for every invocation.
type Workspace struct {
	Path    string
	Name    string
	Gateway git.Gateway
}

// BranchState records the branches chosen for a merge.
type BranchState struct {
	Current string
	Target  string
	Remote  string
}

// OutcomeStatus tags how the guarded merge sequence ended.
type OutcomeStatus string

const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeConflict OutcomeStatus = "conflict"
	OutcomeFailed   OutcomeStatus = "failed"
)

// Outcome is the result of the guarded merge sequence.
type Outcome struct {
	Status OutcomeStatus
	// Branch is the active branch when the sequence stopped on a conflict.
	Branch          string
	ConflictedFiles []string
	Err             error
}

// Task is a follow-up action that runs after the workflow has returned.
type Task func(ctx context.Context) error

// MergeResult describes one merge-to-target invocation. Outcome is empty when
// the workflow stopped before the guarded sequence.
type MergeResult struct {
	State         BranchState
	Outcome       Outcome
	Stashed       bool
	StashRestored bool
	// FollowUp is set when a conflict left the user a choice to make.
	FollowUp Task
}

// BranchFailure records one branch that could not be updated.
type BranchFailure struct {
	Branch string
	Err    error
}

// UpdateResult describes one update-all-branches invocation.
type UpdateResult struct {
	Original string
	Updated  []string
	Failed   []BranchFailure
}

// FailedBranches returns the names of the branches that failed to update.
func (r UpdateResult) FailedBranches() []string {
	names := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		names = append(names, f.Branch)
	}
	return names
}
