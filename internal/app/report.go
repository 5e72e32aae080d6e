package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gitquickmerge/quickmerge/internal/orchestrator"
)

// runRecord is one line of the JSON-lines run report.
type runRecord struct {
	Time            time.Time `json:"time"`
	Workflow        string    `json:"workflow"`
	Repository      string    `json:"repository,omitempty"`
	DryRun          bool      `json:"dry_run,omitempty"`
	Current         string    `json:"current,omitempty"`
	Target          string    `json:"target,omitempty"`
	Remote          string    `json:"remote,omitempty"`
	Outcome         string    `json:"outcome"`
	Error           string    `json:"error,omitempty"`
	ConflictedFiles []string  `json:"conflicted_files,omitempty"`
	Stashed         bool      `json:"stashed,omitempty"`
	StashRestored   bool      `json:"stash_restored,omitempty"`
	Updated         []string  `json:"updated,omitempty"`
	FailedBranches  []string  `json:"failed_branches,omitempty"`
}

const outcomeCancelled = "cancelled"

func mergeRecord(ws *orchestrator.Workspace, result orchestrator.MergeResult, err error) runRecord {
	rec := runRecord{
		Workflow:        "merge",
		Current:         result.State.Current,
		Target:          result.State.Target,
		Remote:          result.State.Remote,
		Outcome:         string(result.Outcome.Status),
		ConflictedFiles: result.Outcome.ConflictedFiles,
		Stashed:         result.Stashed,
		StashRestored:   result.StashRestored,
	}
	if ws != nil {
		rec.Repository = ws.Path
	}
	switch {
	case orchestrator.IsCancelled(err):
		rec.Outcome = outcomeCancelled
	case err != nil:
		rec.Outcome = string(orchestrator.OutcomeFailed)
		rec.Error = err.Error()
	}
	return rec
}

func updateRecord(ws *orchestrator.Workspace, result orchestrator.UpdateResult, err error) runRecord {
	rec := runRecord{
		Workflow:       "update-all",
		Current:        result.Original,
		Outcome:        string(orchestrator.OutcomeSuccess),
		Updated:        result.Updated,
		FailedBranches: result.FailedBranches(),
	}
	if ws != nil {
		rec.Repository = ws.Path
	}
	if err != nil {
		rec.Outcome = string(orchestrator.OutcomeFailed)
		rec.Error = err.Error()
	} else if len(rec.FailedBranches) > 0 {
		rec.Outcome = string(orchestrator.OutcomeFailed)
	}
	return rec
}

// appendReport adds rec to the configured report file. No file, no report.
func (r *Runner) appendReport(rec runRecord) error {
	path := r.cfg.ReportFile
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	rec.Time = r.now().UTC()
	rec.DryRun = r.cfg.DryRun

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run report: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run report: %w", err)
	}

	if _, err := file.Write(append(line, '\n')); err != nil {
		_ = file.Close()
		return fmt.Errorf("write run report: %w", err)
	}
	return file.Close()
}
