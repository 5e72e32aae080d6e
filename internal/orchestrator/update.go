package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitquickmerge/quickmerge/internal/branches"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

// UpdateAllBranches checks out and pulls every local branch in listed order,
// then returns to the branch that was active. Per-branch failures are recorded
// in the result and summarised to the user; they are not returned as an error.
func (o *Orchestrator) UpdateAllBranches(ctx context.Context, ws *Workspace) (UpdateResult, error) {
	release, err := o.acquire(ws)
	if err != nil {
		return UpdateResult{}, err
	}
	defer release()

	gw := ws.Gateway
	log := o.log.With("workflow", "update-all", "repository", ws.Name)

	list, err := gw.LocalBranches(ctx)
	if err != nil {
		wrapped := fmt.Errorf("list branches: %w", err)
		o.reportError(fmt.Sprintf("Could not list branches: %v", err), wrapped)
		return UpdateResult{}, wrapped
	}

	names := branches.Updatable(list.All)
	if len(names) == 0 {
		log.Warn("no local branches to update")
		o.ui.Notify(prompt.LevelWarn, "No local branches to update.")
		return UpdateResult{Original: list.Current}, nil
	}

	result := UpdateResult{Original: list.Current}
	progress := o.ui.Progress("Updating all branches")
	increment := 100 / float64(len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			for _, rest := range names[i:] {
				result.Failed = append(result.Failed, BranchFailure{Branch: rest, Err: &StepError{Kind: ErrSkipped, Branch: rest, Err: err}})
			}
			log.Warn("update interrupted", "skipped", len(names)-i, "error", err)
			break
		}
		progress.Report(increment, fmt.Sprintf("Updating %s", name))

		if err := gw.Checkout(ctx, name); err != nil {
			log.Warn("failed to check out branch", "branch", name, "error", err)
			result.Failed = append(result.Failed, BranchFailure{Branch: name, Err: &StepError{Kind: ErrCheckoutFailed, Branch: name, Err: err}})
			continue
		}
		if err := gw.Pull(ctx, "", ""); err != nil {
			log.Warn("failed to pull branch", "branch", name, "error", err)
			result.Failed = append(result.Failed, BranchFailure{Branch: name, Err: &StepError{Kind: ErrPullFailed, Branch: name, Err: err}})
			continue
		}
		log.Info("updated branch", "branch", name)
		result.Updated = append(result.Updated, name)
	}
	progress.Done()

	if result.Original != "" {
		if err := gw.Checkout(context.WithoutCancel(ctx), result.Original); err != nil {
			log.Warn("failed to return to original branch", "branch", result.Original, "error", err)
		}
	}

	if len(result.Failed) == 0 {
		o.ui.Notify(prompt.LevelInfo, fmt.Sprintf("%sUpdated %d branch(es).", o.dryRunPrefix(), len(result.Updated)))
		return result, nil
	}

	failed := result.FailedBranches()
	log.Error("some branches failed to update", "branches", failed)
	if _, err := o.ui.Ask(context.WithoutCancel(ctx), prompt.Prompt{
		ID:      PromptUpdateSummary,
		Level:   prompt.LevelError,
		Message: fmt.Sprintf("Failed to update %d branch(es)", len(failed)),
		Detail:  strings.Join(failed, "\n"),
		Modal:   true,
	}); err != nil {
		log.Warn("could not show update summary", "error", err)
	}

	return result, nil
}
