package orchestrator_test

import (
	"context"
	"fmt"
	"slices"

	"github.com/gitquickmerge/quickmerge/internal/git"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

// fakeGateway records every mutating call and simulates branch switching. Like
// the shell gateway it refuses to run anything once ctx is done.
type fakeGateway struct {
	current         string
	branches        []string
	remotes         []git.Remote
	staged          []string
	modified        []string
	untracked       []string
	conflicted      []string
	mergeInProgress bool

	statusErr      error
	branchesErr    error
	checkoutErrs   map[string]error
	pullErrs       map[string][]error
	mergeErr       error
	mergeConflicts []string
	pushErr        error
	setUpstreamErr error
	stashErr       error
	stashPopErr    error
	abortErr       error

	// statusErrAfterMerge replaces statusErr once Merge has run.
	statusErrAfterMerge error
	// onPull runs before every pull, e.g. to cancel the caller's context.
	onPull func()

	calls []string
}

func newFakeGateway(current string, branches ...string) *fakeGateway {
	return &fakeGateway{
		current:  current,
		branches: branches,
		remotes:  []git.Remote{{Name: "origin", FetchURL: "https://example.com/repo.git"}},
	}
}

func (f *fakeGateway) Status(ctx context.Context) (git.Status, error) {
	if err := ctx.Err(); err != nil {
		return git.Status{}, err
	}
	if f.statusErr != nil {
		return git.Status{}, f.statusErr
	}
	return git.Status{
		CurrentBranch:   f.current,
		Staged:          f.staged,
		Modified:        f.modified,
		Conflicted:      f.conflicted,
		Untracked:       f.untracked,
		MergeInProgress: f.mergeInProgress,
	}, nil
}

func (f *fakeGateway) LocalBranches(context.Context) (git.Branches, error) {
	if f.branchesErr != nil {
		return git.Branches{}, f.branchesErr
	}
	return git.Branches{Current: f.current, All: f.branches}, nil
}

func (f *fakeGateway) Remotes(context.Context) ([]git.Remote, error) {
	return f.remotes, nil
}

func (f *fakeGateway) Checkout(ctx context.Context, branch string) error {
	f.calls = append(f.calls, "checkout "+branch)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.checkoutErrs[branch]; err != nil {
		return err
	}
	f.current = branch
	return nil
}

func (f *fakeGateway) Pull(ctx context.Context, remote, branch string) error {
	key := remote + " " + branch
	if remote == "" && branch == "" {
		key = f.current
		f.calls = append(f.calls, "pull")
	} else {
		f.calls = append(f.calls, "pull "+key)
	}
	if f.onPull != nil {
		f.onPull()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	queue := f.pullErrs[key]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	f.pullErrs[key] = queue[1:]
	return err
}

func (f *fakeGateway) Merge(_ context.Context, branches ...string) error {
	f.calls = append(f.calls, fmt.Sprintf("merge %v", branches))
	if f.mergeConflicts != nil {
		f.conflicted = f.mergeConflicts
		f.mergeInProgress = true
	}
	if f.statusErrAfterMerge != nil {
		f.statusErr = f.statusErrAfterMerge
	}
	return f.mergeErr
}

func (f *fakeGateway) Push(_ context.Context, remote, branch string) error {
	f.calls = append(f.calls, "push "+remote+" "+branch)
	return f.pushErr
}

func (f *fakeGateway) PushSetUpstream(_ context.Context, remote, branch string) error {
	f.calls = append(f.calls, "push-set-upstream "+remote+" "+branch)
	return f.setUpstreamErr
}

func (f *fakeGateway) Stash(context.Context) error {
	f.calls = append(f.calls, "stash")
	return f.stashErr
}

func (f *fakeGateway) StashPop(ctx context.Context) error {
	f.calls = append(f.calls, "stash-pop")
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.stashPopErr
}

func (f *fakeGateway) AbortMerge(context.Context) error {
	f.calls = append(f.calls, "abort-merge")
	if f.abortErr != nil {
		return f.abortErr
	}
	f.conflicted = nil
	f.mergeInProgress = false
	return nil
}

func (f *fakeGateway) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type notification struct {
	level   prompt.Level
	message string
}

// scriptedPrompter answers prompts by ID and records everything it was shown.
// A pick ID without an answer is treated as cancelled.
type scriptedPrompter struct {
	answers map[string]string
	picks   map[string]string

	asked    []prompt.Prompt
	picked   []prompt.Pick
	notes    []notification
	reports  []float64
	progress int
	done     int
}

func newScriptedPrompter() *scriptedPrompter {
	return &scriptedPrompter{answers: map[string]string{}, picks: map[string]string{}}
}

func (s *scriptedPrompter) Ask(_ context.Context, p prompt.Prompt) (string, error) {
	s.asked = append(s.asked, p)
	return s.answers[p.ID], nil
}

func (s *scriptedPrompter) Notify(level prompt.Level, message string) {
	s.notes = append(s.notes, notification{level: level, message: message})
}

func (s *scriptedPrompter) Select(_ context.Context, p prompt.Pick) (prompt.Item, bool, error) {
	s.picked = append(s.picked, p)
	label, ok := s.picks[p.ID]
	if !ok {
		return prompt.Item{}, false, nil
	}
	for _, item := range p.Items {
		if item.Label == label {
			return item, true, nil
		}
	}
	return prompt.Item{}, false, fmt.Errorf("%s not offered", label)
}

func (s *scriptedPrompter) Progress(string) prompt.Progress {
	s.progress++
	return &fakeProgress{owner: s}
}

func (s *scriptedPrompter) askedIDs() []string {
	ids := make([]string, 0, len(s.asked))
	for _, p := range s.asked {
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *scriptedPrompter) messages(level prompt.Level) []string {
	var out []string
	for _, n := range s.notes {
		if n.level == level {
			out = append(out, n.message)
		}
	}
	return out
}

func (s *scriptedPrompter) pickLabels(id string) []string {
	idx := slices.IndexFunc(s.picked, func(p prompt.Pick) bool { return p.ID == id })
	if idx < 0 {
		return nil
	}
	labels := make([]string, 0, len(s.picked[idx].Items))
	for _, item := range s.picked[idx].Items {
		labels = append(labels, item.Label)
	}
	return labels
}

type fakeProgress struct {
	owner *scriptedPrompter
}

func (p *fakeProgress) Report(increment float64, _ string) {
	p.owner.reports = append(p.owner.reports, increment)
}

func (p *fakeProgress) Done() {
	p.owner.done++
}
