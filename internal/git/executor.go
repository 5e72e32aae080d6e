package git

import "context"

// Executor opens gateways for repositories on disk.
type Executor interface {
	Open(ctx context.Context, path string) (Gateway, error)
}

// Gateway exposes the git primitives required by the workflows. Every call blocks
// until git exits; none of them retries.
type Gateway interface {
	Status(ctx context.Context) (Status, error)
	LocalBranches(ctx context.Context) (Branches, error)
	Remotes(ctx context.Context) ([]Remote, error)
	Checkout(ctx context.Context, branch string) error
	// Pull runs `git pull <remote> <branch>`, or a plain `git pull` when both are empty.
	Pull(ctx context.Context, remote, branch string) error
	Merge(ctx context.Context, branches ...string) error
	Push(ctx context.Context, remote, branch string) error
	PushSetUpstream(ctx context.Context, remote, branch string) error
	Stash(ctx context.Context) error
	StashPop(ctx context.Context) error
	AbortMerge(ctx context.Context) error
}

// Status is a snapshot of the working tree.
type Status struct {
	CurrentBranch   string
	Staged          []string
	Modified        []string
	Conflicted      []string
	Untracked       []string
	MergeInProgress bool
}

// HasTrackedChanges reports staged, modified or conflicted files. Untracked files
// do not count.
func (s Status) HasTrackedChanges() bool {
	return len(s.Staged) > 0 || len(s.Modified) > 0 || len(s.Conflicted) > 0
}

// TrackedChangeCount returns the number of tracked paths with changes.
func (s Status) TrackedChangeCount() int {
	return len(s.Staged) + len(s.Modified) + len(s.Conflicted)
}

// Branches lists local branches. Current is empty when HEAD is detached.
type Branches struct {
	Current string
	All     []string
}

// Remote is a configured remote and its fetch URL.
type Remote struct {
	Name     string
	FetchURL string
}
