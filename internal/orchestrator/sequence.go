package orchestrator

import (
	"context"
	"fmt"

	"github.com/gitquickmerge/quickmerge/internal/classify"
	"github.com/gitquickmerge/quickmerge/internal/git"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

// runSequence executes checkout, pull, merge, verify, push and checkout back
// under one progress scope. It always returns an Outcome; failures are
// reported and the original branch restored before it does.
func (o *Orchestrator) runSequence(ctx context.Context, gw git.Gateway, state BranchState) (Outcome, Task) {
	progress := o.ui.Progress(fmt.Sprintf("Merging %s into %s", state.Current, state.Target))
	defer progress.Done()

	progress.Report(weightCheckout, fmt.Sprintf("Switching to %s", state.Target))
	if err := gw.Checkout(ctx, state.Target); err != nil {
		return o.fail(ctx, gw, state, ErrCheckoutFailed, state.Target, err), nil
	}

	progress.Report(weightPull, fmt.Sprintf("Pulling %s from %s", state.Target, state.Remote))
	if outcome, ok := o.pullTarget(ctx, gw, state); !ok {
		return outcome, nil
	}

	progress.Report(weightMerge, fmt.Sprintf("Merging %s into %s", state.Current, state.Target))
	if err := gw.Merge(ctx, state.Current); err != nil {
		if !o.detector.IsConflict(err) {
			return o.fail(ctx, gw, state, ErrMergeFailed, state.Target, err), nil
		}
		o.log.Warn("merge reported conflicts", "target", state.Target, "error", err)
		return o.conflictOutcome(ctx, gw, state, o.detector.Files(err))
	}

	status, err := gw.Status(ctx)
	if err != nil {
		o.log.Warn("could not verify merge result, pushing anyway", "target", state.Target, "error", err)
	} else if len(status.Conflicted) > 0 {
		o.log.Warn("merge succeeded but left conflicted files", "target", state.Target, "files", len(status.Conflicted))
		return o.conflictOutcome(ctx, gw, state, status.Conflicted)
	}

	progress.Report(weightPush, fmt.Sprintf("Pushing %s to %s", state.Target, state.Remote))
	if err := gw.Push(ctx, state.Remote, state.Target); err != nil {
		return o.fail(ctx, gw, state, ErrPushFailed, state.Target, err), nil
	}

	progress.Report(weightCheckoutBack, fmt.Sprintf("Switching back to %s", state.Current))
	if err := gw.Checkout(ctx, state.Current); err != nil {
		o.reportWarning(fmt.Sprintf("Merged and pushed %s, but could not switch back to %s: %v. Switch manually.", state.Target, state.Current, err), err)
	}

	o.ui.Notify(prompt.LevelInfo, fmt.Sprintf("%sMerged %s into %s and pushed to %s.", o.dryRunPrefix(), state.Current, state.Target, state.Remote))
	return Outcome{Status: OutcomeSuccess}, nil
}

// pullTarget pulls the checked-out target. It returns ok=false with a failed
// outcome when the sequence must stop.
func (o *Orchestrator) pullTarget(ctx context.Context, gw git.Gateway, state BranchState) (Outcome, bool) {
	err := gw.Pull(ctx, state.Remote, state.Target)
	if err == nil {
		return Outcome{}, true
	}
	if !classify.MissingUpstream(err) {
		return o.fail(ctx, gw, state, ErrPullFailed, state.Target, err), false
	}

	o.log.Warn("target branch has no upstream", "target", state.Target, "remote", state.Remote)
	choice, askErr := o.ui.Ask(ctx, prompt.Prompt{
		ID:      PromptMissingUpstream,
		Level:   prompt.LevelWarn,
		Message: fmt.Sprintf("Branch %s has no upstream on %s.", state.Target, state.Remote),
		Options: []string{OptionSetUpstream, OptionSkipPull, OptionCancel},
	})
	if askErr != nil {
		return o.fail(ctx, gw, state, ErrPullFailed, state.Target, askErr), false
	}

	switch choice {
	case OptionSetUpstream:
		if err := gw.PushSetUpstream(ctx, state.Remote, state.Target); err != nil {
			o.reportWarning(fmt.Sprintf("Could not set upstream for %s: %v", state.Target, err), err)
			return Outcome{}, true
		}
		if err := gw.Pull(ctx, state.Remote, state.Target); err != nil {
			o.reportWarning(fmt.Sprintf("Upstream set, but pulling %s failed: %v", state.Target, err), err)
			return Outcome{}, true
		}
		o.log.Info("set upstream and pulled", "target", state.Target, "remote", state.Remote)
	case OptionSkipPull:
		o.reportWarning(fmt.Sprintf("Skipped pulling %s. The merge uses your local copy.", state.Target), err)
	default:
		o.log.Info("merge cancelled at missing upstream prompt", "target", state.Target)
		return o.fail(ctx, gw, state, ErrUserCancelled, state.Target, err), false
	}
	return Outcome{}, true
}

// fail restores the original branch and reports err unless the user cancelled.
func (o *Orchestrator) fail(ctx context.Context, gw git.Gateway, state BranchState, kind error, branch string, err error) Outcome {
	o.restoreBranch(ctx, gw, state.Current)
	if kind == ErrUserCancelled {
		return Outcome{Status: OutcomeFailed, Err: ErrUserCancelled}
	}

	stepErr := &StepError{Kind: kind, Branch: branch, Err: err}
	o.reportError(fmt.Sprintf("Merge failed: %v", stepErr), stepErr)
	return Outcome{Status: OutcomeFailed, Err: stepErr}
}

// restoreBranch checks out original when the active branch differs. Its own
// failure is a warning. It still runs after ctx is cancelled.
func (o *Orchestrator) restoreBranch(ctx context.Context, gw git.Gateway, original string) {
	ctx = context.WithoutCancel(ctx)

	status, err := gw.Status(ctx)
	if err == nil && status.CurrentBranch == original {
		return
	}
	if err != nil {
		o.log.Warn("could not read active branch before restoring", "error", err)
	}

	if err := gw.Checkout(ctx, original); err != nil {
		o.reportWarning(fmt.Sprintf("Could not switch back to %s: %v. Switch manually.", original, err), err)
		return
	}
	o.log.Info("restored original branch", "branch", original)
}

func (o *Orchestrator) conflictOutcome(ctx context.Context, gw git.Gateway, state BranchState, files []string) (Outcome, Task) {
	branch := state.Target
	status, err := gw.Status(ctx)
	switch {
	case err != nil:
		o.log.Warn("could not re-read status after conflict", "error", err)
	case len(status.Conflicted) > 0:
		files = status.Conflicted
		fallthrough
	default:
		if status.CurrentBranch != "" {
			branch = status.CurrentBranch
		}
	}

	task := o.handleConflict(gw, state, branch, files)
	return Outcome{Status: OutcomeConflict, Branch: branch, ConflictedFiles: files}, task
}
