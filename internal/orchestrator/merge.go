package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitquickmerge/quickmerge/internal/branches"
	"github.com/gitquickmerge/quickmerge/internal/git"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

// MergeToTarget merges the current branch into a branch the user picks, pushes
// the target and switches back. A non-nil error means the workflow did not
// complete and has already been reported to the user. A conflict is not an
// error: the result carries OutcomeConflict and a FollowUp task.
func (o *Orchestrator) MergeToTarget(ctx context.Context, ws *Workspace) (result MergeResult, err error) {
	release, err := o.acquire(ws)
	if err != nil {
		return MergeResult{}, err
	}
	defer release()

	gw := ws.Gateway
	log := o.log.With("workflow", "merge", "repository", ws.Name)

	status, err := gw.Status(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrNoRepository, err)
		o.reportError(fmt.Sprintf("Could not read repository status: %v", err), wrapped)
		return MergeResult{}, wrapped
	}

	if status.MergeInProgress {
		o.reportError(fmt.Sprintf("A merge is already in progress in %s. Resolve it or run `git merge --abort` first.", ws.Name), ErrMergeInProgress)
		return MergeResult{}, ErrMergeInProgress
	}

	if status.HasTrackedChanges() {
		stash, err := o.confirmDirty(ctx, status)
		if err != nil {
			return MergeResult{}, err
		}
		if stash {
			if err := gw.Stash(ctx); err != nil {
				wrapped := &StepError{Kind: ErrStashFailed, Branch: status.CurrentBranch, Err: err}
				o.reportError(fmt.Sprintf("Failed to stash changes: %v", err), wrapped)
				return MergeResult{}, wrapped
			}
			log.Info("stashed uncommitted changes", "files", status.TrackedChangeCount())
			result.Stashed = true
			defer func() {
				result.StashRestored = o.popStash(ctx, gw)
			}()
		}
	}

	current := status.CurrentBranch
	if current == "" {
		o.reportError("No current branch found. Check out a branch before merging.", ErrNoCurrentBranch)
		return result, ErrNoCurrentBranch
	}
	result.State.Current = current

	remote, err := o.resolveRemote(ctx, gw)
	if err != nil {
		return result, err
	}
	result.State.Remote = remote

	target, err := o.resolveTarget(ctx, gw, current)
	if err != nil {
		return result, err
	}
	result.State.Target = target

	log.Info("starting merge", "current", current, "target", target, "remote", remote)

	outcome, followUp := o.runSequence(ctx, gw, result.State)
	result.Outcome = outcome
	result.FollowUp = followUp

	switch outcome.Status {
	case OutcomeConflict:
		log.Warn("merge stopped on conflicts", "branch", outcome.Branch, "conflicted_files", len(outcome.ConflictedFiles))
		return result, nil
	case OutcomeFailed:
		return result, outcome.Err
	default:
		log.Info("merge completed", "current", current, "target", target, "remote", remote)
		return result, nil
	}
}

// confirmDirty asks what to do with tracked changes. It returns true when the
// user wants them stashed and ErrUserCancelled when the workflow should stop.
func (o *Orchestrator) confirmDirty(ctx context.Context, status git.Status) (bool, error) {
	count := status.TrackedChangeCount()
	o.log.Info("uncommitted changes detected", "files", count)

	choice, err := o.ui.Ask(ctx, prompt.Prompt{
		ID:      PromptDirtyWorktree,
		Level:   prompt.LevelWarn,
		Message: fmt.Sprintf("You have %d uncommitted change(s). Stash them before merging?", count),
		Options: []string{OptionStash, OptionContinue, OptionCancel},
	})
	if err != nil {
		o.reportError(fmt.Sprintf("Could not ask about uncommitted changes: %v", err), err)
		return false, err
	}

	switch choice {
	case OptionStash:
		return true, nil
	case OptionContinue:
		o.log.Info("continuing without stashing")
		return false, nil
	default:
		o.log.Info("merge cancelled at uncommitted changes prompt")
		return false, ErrUserCancelled
	}
}

func (o *Orchestrator) popStash(ctx context.Context, gw git.Gateway) bool {
	if err := gw.StashPop(context.WithoutCancel(ctx)); err != nil {
		o.reportWarning(fmt.Sprintf("Could not restore stashed changes: %v. Run `git stash pop` manually.", err), err)
		return false
	}
	o.log.Info("restored stashed changes")
	return true
}

func (o *Orchestrator) resolveRemote(ctx context.Context, gw git.Gateway) (string, error) {
	remotes, err := gw.Remotes(ctx)
	if err != nil {
		wrapped := fmt.Errorf("list remotes: %w", err)
		o.reportError(fmt.Sprintf("Could not list remotes: %v", err), wrapped)
		return "", wrapped
	}

	switch len(remotes) {
	case 0:
		o.reportError("No remote repository configured.", ErrNoRemote)
		return "", ErrNoRemote
	case 1:
		o.log.Debug("using only configured remote", "remote", remotes[0].Name)
		return remotes[0].Name, nil
	}

	items := make([]prompt.Item, 0, len(remotes))
	for _, r := range remotes {
		items = append(items, prompt.Item{Label: r.Name, Description: r.FetchURL})
	}

	item, ok, err := o.ui.Select(ctx, prompt.Pick{
		ID:          PromptRemote,
		Title:       "Select remote",
		Placeholder: "Remote to pull from and push to",
		Items:       items,
	})
	if err != nil {
		o.reportError(fmt.Sprintf("Could not select a remote: %v", err), err)
		return "", err
	}
	if !ok {
		o.log.Info("merge cancelled at remote selection")
		return "", ErrUserCancelled
	}
	return item.Label, nil
}

func (o *Orchestrator) resolveTarget(ctx context.Context, gw git.Gateway, current string) (string, error) {
	list, err := gw.LocalBranches(ctx)
	if err != nil {
		wrapped := fmt.Errorf("list branches: %w", err)
		o.reportError(fmt.Sprintf("Could not list branches: %v", err), wrapped)
		return "", wrapped
	}

	candidates := branches.TargetCandidates(list.All, current)
	if len(candidates) == 0 {
		o.reportError("No other local branches to merge into.", ErrNoTargetBranches)
		return "", ErrNoTargetBranches
	}

	items := make([]prompt.Item, 0, len(candidates))
	for _, name := range candidates {
		items = append(items, prompt.Item{Label: name})
	}

	item, ok, err := o.ui.Select(ctx, prompt.Pick{
		ID:          PromptTargetBranch,
		Title:       "Select target branch",
		Placeholder: fmt.Sprintf("Merge %s into...", current),
		Items:       items,
	})
	if err != nil {
		o.reportError(fmt.Sprintf("Could not select a target branch: %v", err), err)
		return "", err
	}
	if !ok {
		o.log.Info("merge cancelled at target selection")
		return "", ErrUserCancelled
	}
	return item.Label, nil
}

// IsCancelled reports whether err ended a workflow because the user chose to stop.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrUserCancelled)
}
