package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gitquickmerge/quickmerge/internal/git"
	"github.com/gitquickmerge/quickmerge/internal/orchestrator"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
)

var (
	// ErrReported marks errors the user has already been shown.
	ErrReported = errors.New("already reported")

	// ErrConflict means the merge stopped on conflicts the user must resolve.
	ErrConflict = errors.New("merge stopped on conflicts")
)

type reportedError struct {
	err error
}

func (e reportedError) Error() string   { return e.err.Error() }
func (e reportedError) Unwrap() []error { return []error{ErrReported, e.err} }

// Runner glues together the orchestrator and supporting services for one
// command invocation.
type Runner struct {
	cfg     Config
	log     *slog.Logger
	ui      prompt.Prompter
	gitExec git.Executor
	locker  orchestrator.Locker
	sink    io.Closer
	now     func() time.Time
}

// NewRunner opens the log sink and wires the shell git executor and the
// in-process plus on-disk repository locks.
func NewRunner(cfg Config, ui prompt.Prompter) (*Runner, error) {
	sink, err := OpenLogSink(cfg.Log.File)
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Log.Level, cfg.Log.Format, sink)
	if err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("create logger: %w", err)
	}

	exec := git.NewShellExecutor()
	exec.Git = cfg.Git.Binary
	exec.Log = logger

	locker := orchestrator.ChainLockers(orchestrator.NewMemoryLocker(), NewFileLocker(DefaultLockDir()))

	r := NewRunnerWithDeps(cfg, logger, ui, exec, locker)
	r.sink = sink
	return r, nil
}

// NewRunnerWithDeps constructs a Runner with injected dependencies for testing.
func NewRunnerWithDeps(cfg Config, log *slog.Logger, ui prompt.Prompter, gitExec git.Executor, locker orchestrator.Locker) *Runner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, log: log, ui: ui, gitExec: gitExec, locker: locker, now: time.Now}
}

// Close releases the log sink.
func (r *Runner) Close() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}

// Merge runs the merge-to-target workflow and then the conflict follow-up, if
// one was produced.
func (r *Runner) Merge(ctx context.Context) error {
	r.log.Info("starting merge", "dry_run", r.cfg.DryRun, "repo", r.cfg.Repo)

	ws, err := r.resolveWorkspace(ctx)
	if err != nil {
		r.report(mergeRecord(nil, orchestrator.MergeResult{}, err))
		return r.reportFailure(err)
	}

	result, err := r.newOrchestrator().MergeToTarget(ctx, ws)
	r.report(mergeRecord(ws, result, err))

	if result.FollowUp != nil {
		if ferr := result.FollowUp(context.WithoutCancel(ctx)); ferr != nil {
			r.log.Warn("conflict follow-up failed", "error", ferr)
		}
	}

	switch {
	case orchestrator.IsCancelled(err):
		r.log.Info("merge cancelled by user")
		return nil
	case err != nil:
		return reportedError{err: err}
	case result.Outcome.Status == orchestrator.OutcomeConflict:
		return reportedError{err: fmt.Errorf("%w on %s", ErrConflict, result.Outcome.Branch)}
	}
	return nil
}

// UpdateAll runs the update-all-branches workflow.
func (r *Runner) UpdateAll(ctx context.Context) error {
	r.log.Info("starting update-all", "dry_run", r.cfg.DryRun, "repo", r.cfg.Repo)

	ws, err := r.resolveWorkspace(ctx)
	if err != nil {
		r.report(updateRecord(nil, orchestrator.UpdateResult{}, err))
		return r.reportFailure(err)
	}

	result, err := r.newOrchestrator().UpdateAllBranches(ctx, ws)
	r.report(updateRecord(ws, result, err))
	if err != nil {
		return reportedError{err: err}
	}

	if failed := result.FailedBranches(); len(failed) > 0 {
		return reportedError{err: fmt.Errorf("%d branch(es) failed to update: %v", len(failed), failed)}
	}
	return nil
}

func (r *Runner) newOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Config{
		DryRun: r.cfg.DryRun,
		Locker: r.locker,
	}, r.ui, r.log)
}

// resolveWorkspace finds the repository for this invocation and opens a fresh
// gateway for it.
func (r *Runner) resolveWorkspace(ctx context.Context) (*orchestrator.Workspace, error) {
	loc, err := git.Locate(r.cfg.Repo)
	if err != nil {
		return nil, err
	}

	exec := r.gitExec
	if r.cfg.DryRun {
		exec = git.NewDryRunExecutor(exec, r.log)
	}

	gw, err := exec.Open(ctx, loc.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", git.ErrNoRepository, err)
	}

	r.log.Debug("resolved workspace", "path", loc.Path, "name", loc.Name)
	return &orchestrator.Workspace{Path: loc.Path, Name: loc.Name, Gateway: gw}, nil
}

func (r *Runner) reportFailure(err error) error {
	message := fmt.Sprintf("No git repository found: %v", err)
	if !errors.Is(err, git.ErrNoRepository) {
		message = fmt.Sprintf("Could not open repository: %v", err)
	}
	r.log.Error(message, "error", err)
	r.ui.Notify(prompt.LevelError, message)
	return reportedError{err: err}
}

func (r *Runner) report(rec runRecord) {
	if err := r.appendReport(rec); err != nil {
		r.log.Warn("failed to write run report", "error", err)
	}
}
