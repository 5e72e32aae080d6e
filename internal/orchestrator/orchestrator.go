package orchestrator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitquickmerge/quickmerge/internal/classify"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

// Prompt IDs and button labels for every decision point.
const (
	PromptDirtyWorktree   = "dirty-worktree"
	PromptRemote          = "remote"
	PromptTargetBranch    = "target-branch"
	PromptMissingUpstream = "missing-upstream"
	PromptMergeConflict   = "merge-conflict"
	PromptConflictDetails = "conflict-details"
	PromptUpdateSummary   = "update-summary"

	OptionStash       = "Stash Changes"
	OptionContinue    = "Continue Merge"
	OptionCancel      = "Cancel"
	OptionSetUpstream = "Set Upstream and Continue"
	OptionSkipPull    = "Skip Pull"
	OptionAbortMerge  = "Abort Merge"
	OptionShowDetails = "Show Details"
)

// Progress weights of the guarded sequence steps. They sum to 100.
const (
	weightCheckout     = 15
	weightPull         = 20
	weightMerge        = 30
	weightPush         = 20
	weightCheckoutBack = 15
)

// Orchestrator runs the merge-to-target and update-all-branches workflows
// against a workspace, asking the user through a Prompter.
type Orchestrator struct {
	cfg      Config
	ui       prompt.Prompter
	detector classify.ConflictDetector
	locker   Locker
	log      *slog.Logger
}

// New returns a configured Orchestrator instance.
func New(cfg Config, ui prompt.Prompter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	detector := cfg.Detector
	if detector == nil {
		detector = classify.Heuristic{}
	}
	locker := cfg.Locker
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &Orchestrator{cfg: cfg, ui: ui, detector: detector, locker: locker, log: logger}
}

// acquire resolves the workspace and takes the per-repository lock. Failures
// are already reported to the user when it returns.
func (o *Orchestrator) acquire(ws *Workspace) (func(), error) {
	if ws == nil || ws.Gateway == nil {
		o.reportError("No git repository found. Open a folder inside a git repository.", ErrNoRepository)
		return nil, ErrNoRepository
	}

	release, err := o.locker.TryLock(ws.Path)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			o.log.Warn("workflow rejected: repository busy", "repository", ws.Path)
			o.ui.Notify(prompt.LevelWarn, fmt.Sprintf("Another quickmerge operation is already running for %s.", ws.Name))
			return nil, err
		}
		o.reportError(fmt.Sprintf("Could not lock %s: %v", ws.Name, err), err)
		return nil, err
	}
	return release, nil
}

func (o *Orchestrator) reportError(message string, err error) {
	o.log.Error(message, "error", err)
	o.ui.Notify(prompt.LevelError, message)
}

func (o *Orchestrator) reportWarning(message string, err error) {
	o.log.Warn(message, "error", err)
	o.ui.Notify(prompt.LevelWarn, message)
}

func (o *Orchestrator) dryRunPrefix() string {
	if o.cfg.DryRun {
		return "[dry run] "
	}
	return ""
}
