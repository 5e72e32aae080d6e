package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitquickmerge/quickmerge/internal/app"
	"github.com/gitquickmerge/quickmerge/internal/branches"
	"github.com/gitquickmerge/quickmerge/internal/orchestrator"
	"github.com/gitquickmerge/quickmerge/internal/prompt"
	"github.com/gitquickmerge/quickmerge/internal/ui"
)

const (
	exitFailure  = 1
	exitConflict = 2
)

type globalFlags struct {
	configPath string
	repo       string
	logLevel   string
	logFormat  string
	logFile    string
	reportFile string
	verbose    bool
	dryRun     bool
}

type mergeFlags struct {
	target            string
	remote            string
	onDirty           string
	onMissingUpstream string
	onConflict        string
}

var (
	dirtyChoices = map[string]string{
		"stash":    orchestrator.OptionStash,
		"continue": orchestrator.OptionContinue,
		"cancel":   orchestrator.OptionCancel,
	}
	upstreamChoices = map[string]string{
		"set-upstream": orchestrator.OptionSetUpstream,
		"skip":         orchestrator.OptionSkipPull,
		"cancel":       orchestrator.OptionCancel,
	}
	conflictChoices = map[string]string{
		"abort":   orchestrator.OptionAbortMerge,
		"details": orchestrator.OptionShowDetails,
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
		return
	case errors.Is(err, app.ErrConflict):
		os.Exit(exitConflict)
	case errors.Is(err, app.ErrReported):
		os.Exit(exitFailure)
	default:
		log.Printf("quickmerge: %v", err)
		os.Exit(exitFailure)
	}
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "quickmerge",
		Short:         "Merge the current branch into a target branch and publish it",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to the TOML config file")
	pf.StringVarP(&flags.repo, "repo", "C", "", "Run inside this repository instead of the working directory")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&flags.logFile, "log-file", "", `Log file path, "-" for stderr`)
	pf.StringVar(&flags.reportFile, "report-file", "", "Append a JSON line per run to this file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Log mutating git operations instead of running them")

	root.AddCommand(newMergeCommand(&flags), newUpdateAllCommand(&flags))
	return root
}

func newMergeCommand(flags *globalFlags) *cobra.Command {
	var mf mergeFlags

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the current branch into a target branch, push it and switch back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, err := mf.answers()
			if err != nil {
				return err
			}
			runner, err := buildRunner(cmd, flags, answers)
			if err != nil {
				return err
			}
			defer runner.Close()
			return runner.Merge(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&mf.target, "target", "t", "", "Target branch, skips the branch picker")
	f.StringVarP(&mf.remote, "remote", "r", "", "Remote to pull from and push to, skips the remote picker")
	f.StringVar(&mf.onDirty, "on-dirty", "", "Answer for uncommitted changes: stash, continue or cancel")
	f.StringVar(&mf.onMissingUpstream, "on-missing-upstream", "", "Answer for a target without upstream: set-upstream, skip or cancel")
	f.StringVar(&mf.onConflict, "on-conflict", "", "Answer for a conflicted merge: abort or details")
	return cmd
}

func newUpdateAllCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update-all",
		Short: "Check out and pull every local branch, then return to the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := buildRunner(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer runner.Close()
			return runner.UpdateAll(cmd.Context())
		},
	}
}

func (m mergeFlags) answers() (map[string]string, error) {
	answers := map[string]string{}

	if m.target != "" {
		target := branches.Normalize(m.target)
		if err := branches.Validate(target); err != nil {
			return nil, fmt.Errorf("invalid --target: %w", err)
		}
		answers[orchestrator.PromptTargetBranch] = target
	}
	answers[orchestrator.PromptRemote] = m.remote

	for _, c := range []struct {
		flag    string
		value   string
		id      string
		choices map[string]string
	}{
		{"--on-dirty", m.onDirty, orchestrator.PromptDirtyWorktree, dirtyChoices},
		{"--on-missing-upstream", m.onMissingUpstream, orchestrator.PromptMissingUpstream, upstreamChoices},
		{"--on-conflict", m.onConflict, orchestrator.PromptMergeConflict, conflictChoices},
	} {
		if c.value == "" {
			continue
		}
		option, ok := c.choices[c.value]
		if !ok {
			return nil, fmt.Errorf("invalid %s value %q", c.flag, c.value)
		}
		answers[c.id] = option
	}
	return answers, nil
}

func buildRunner(cmd *cobra.Command, flags *globalFlags, answers map[string]string) (*app.Runner, error) {
	cfg, err := app.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("repo") {
		cfg.Repo = flags.repo
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if changed("log-file") {
		cfg.Log.File = flags.logFile
	}
	if changed("report-file") {
		cfg.ReportFile = flags.reportFile
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if changed("dry-run") {
		cfg.DryRun = flags.dryRun
	}

	cfg, err = cfg.Finalize()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	terminal := ui.New(os.Stdin, os.Stdout)
	runner, err := app.NewRunner(cfg, prompt.WithAnswers(terminal, answers))
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return runner, nil
}
