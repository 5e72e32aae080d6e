package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitquickmerge/quickmerge/internal/git"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

const conflictGuidance = "Resolve the conflicts in your editor, then stage and commit the result.\n" +
	"To give up on this merge instead, run `git merge --abort`."

// handleConflict tells the user about the conflict right away and returns the
// abort/details choice as a task for the caller to run once the workflow has
// returned.
func (o *Orchestrator) handleConflict(gw git.Gateway, state BranchState, branch string, files []string) Task {
	message := fmt.Sprintf("Merge conflict | current branch: %s | conflicted files: %d", branch, len(files))
	o.log.Warn(message, "files", files)
	o.ui.Notify(prompt.LevelError, message)

	return func(ctx context.Context) error {
		choice, err := o.ui.Ask(ctx, prompt.Prompt{
			ID:      PromptMergeConflict,
			Level:   prompt.LevelError,
			Message: fmt.Sprintf("Merging %s into %s stopped on conflicts.", state.Current, state.Target),
			Options: []string{OptionAbortMerge, OptionShowDetails},
		})
		if err != nil {
			return err
		}

		switch choice {
		case OptionAbortMerge:
			return o.abortMerge(ctx, gw, state.Current)
		case OptionShowDetails:
			_, err := o.ui.Ask(ctx, prompt.Prompt{
				ID:      PromptConflictDetails,
				Level:   prompt.LevelWarn,
				Message: "Merge conflicts",
				Detail:  conflictDetails(files),
				Modal:   true,
			})
			return err
		default:
			o.log.Info("conflict prompt dismissed", "branch", branch)
			return nil
		}
	}
}

func (o *Orchestrator) abortMerge(ctx context.Context, gw git.Gateway, original string) error {
	if err := gw.AbortMerge(ctx); err != nil {
		o.reportError(fmt.Sprintf("Failed to abort merge: %v", err), err)
		return err
	}
	if err := gw.Checkout(ctx, original); err != nil {
		o.reportError(fmt.Sprintf("Merge aborted, but could not switch back to %s: %v", original, err), err)
		return err
	}
	o.log.Info("merge aborted", "branch", original)
	o.ui.Notify(prompt.LevelInfo, fmt.Sprintf("Merge aborted. Switched back to %s.", original))
	return nil
}

func conflictDetails(files []string) string {
	var b strings.Builder
	if len(files) == 0 {
		b.WriteString("Git did not report which files conflict. Run `git status` to see them.\n")
	} else {
		b.WriteString("Conflicted files:\n")
		for _, f := range files {
			b.WriteString("  - ")
			b.WriteString(f)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(conflictGuidance)
	return b.String()
}
