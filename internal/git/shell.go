package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const stashMessage = "quickmerge: auto-stash before merge"

// ShellExecutor shells out to the system git binary.
type ShellExecutor struct {
	// Git is the git binary to execute. Defaults to "git" when empty.
	Git string

	// Log receives one debug record per git invocation. Optional.
	Log *slog.Logger
}

// NewShellExecutor returns an Executor backed by system git commands.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{}
}

func (e *ShellExecutor) gitBinary() string {
	if e.Git == "" {
		return "git"
	}
	return e.Git
}

// Open returns a gateway rooted at path. The path must already be a repository
// root; use Locate to find one.
func (e *ShellExecutor) Open(ctx context.Context, path string) (Gateway, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("repository path is required")
	}
	if _, err := e.captureGitOutput(ctx, "-C", path, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &shellGateway{executor: e, path: path}, nil
}

type shellGateway struct {
	path     string
	executor *ShellExecutor
}

func (g *shellGateway) Status(ctx context.Context) (Status, error) {
	out, err := g.capture(ctx, "status", "--porcelain=v2", "--branch")
	if err != nil {
		return Status{}, fmt.Errorf("git status: %w", err)
	}
	status := parseStatus(out)

	// rev-parse exits non-zero when MERGE_HEAD is absent.
	if _, err := g.capture(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD"); err == nil {
		status.MergeInProgress = true
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		return Status{}, ctxErr
	}

	return status, nil
}

func (g *shellGateway) LocalBranches(ctx context.Context) (Branches, error) {
	current, err := g.capture(ctx, "branch", "--show-current")
	if err != nil {
		return Branches{}, fmt.Errorf("git branch --show-current: %w", err)
	}

	out, err := g.capture(ctx, "for-each-ref", "--format=%(refname:lstrip=2)", "refs/heads/")
	if err != nil {
		return Branches{}, fmt.Errorf("git for-each-ref: %w", err)
	}

	var all []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			all = append(all, name)
		}
	}

	return Branches{Current: strings.TrimSpace(current), All: all}, nil
}

func (g *shellGateway) Remotes(ctx context.Context) ([]Remote, error) {
	return listRemotes(g.path)
}

func (g *shellGateway) Checkout(ctx context.Context, branch string) error {
	if err := g.exec(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("git checkout %s: %w", branch, err)
	}
	return nil
}

func (g *shellGateway) Pull(ctx context.Context, remote, branch string) error {
	args := []string{"pull", "--no-rebase", "--no-edit"}
	if remote != "" {
		args = append(args, remote)
		if branch != "" {
			args = append(args, branch)
		}
	}
	if err := g.exec(ctx, args...); err != nil {
		attachConflicts(err)
		return fmt.Errorf("git pull %s %s: %w", remote, branch, err)
	}
	return nil
}

func (g *shellGateway) Merge(ctx context.Context, branches ...string) error {
	if len(branches) == 0 {
		return fmt.Errorf("at least one branch is required to merge")
	}
	args := append([]string{"merge", "--no-edit"}, branches...)
	if err := g.exec(ctx, args...); err != nil {
		attachConflicts(err)
		return fmt.Errorf("git merge %s: %w", strings.Join(branches, " "), err)
	}
	return nil
}

func (g *shellGateway) Push(ctx context.Context, remote, branch string) error {
	if err := g.exec(ctx, "push", remote, branch); err != nil {
		return fmt.Errorf("git push %s %s: %w", remote, branch, err)
	}
	return nil
}

func (g *shellGateway) PushSetUpstream(ctx context.Context, remote, branch string) error {
	if err := g.exec(ctx, "push", "--set-upstream", remote, branch); err != nil {
		return fmt.Errorf("git push --set-upstream %s %s: %w", remote, branch, err)
	}
	return nil
}

func (g *shellGateway) Stash(ctx context.Context) error {
	if err := g.exec(ctx, "stash", "push", "-m", stashMessage); err != nil {
		return fmt.Errorf("git stash: %w", err)
	}
	return nil
}

func (g *shellGateway) StashPop(ctx context.Context) error {
	if err := g.exec(ctx, "stash", "pop"); err != nil {
		return fmt.Errorf("git stash pop: %w", err)
	}
	return nil
}

func (g *shellGateway) AbortMerge(ctx context.Context) error {
	if err := g.exec(ctx, "merge", "--abort"); err != nil {
		return fmt.Errorf("git merge --abort: %w", err)
	}
	return nil
}

func (g *shellGateway) exec(ctx context.Context, args ...string) error {
	cmd := append([]string{"-C", g.path}, args...)
	return g.executor.runGit(ctx, cmd...)
}

func (g *shellGateway) capture(ctx context.Context, args ...string) (string, error) {
	cmd := append([]string{"-C", g.path}, args...)
	return g.executor.captureGitOutput(ctx, cmd...)
}

func (e *ShellExecutor) captureGitOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.gitBinary(), args...)
	cmd.Env = gitEnv()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &GitError{Args: args, Output: stdout.String() + stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

func (e *ShellExecutor) runGit(ctx context.Context, args ...string) error {
	if e.Log != nil {
		e.Log.Debug("running git", "command", primaryGitCommand(args), "args", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, e.gitBinary(), args...)
	cmd.Env = gitEnv()
	setProcessGroup(cmd)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return &GitError{Args: args, Output: output.String(), Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		// Only shutdown cancels the context; take git's children down with it.
		terminateProcessGroup(cmd)
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &GitError{Args: args, Output: output.String(), Err: err}
		}
	}

	return nil
}

func gitEnv() []string {
	return append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_MERGE_AUTOEDIT=no", "LC_ALL=C")
}

func primaryGitCommand(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-C", "--git-dir", "-c":
				i++
			}
			continue
		}
		return arg
	}
	return ""
}

// GitError wraps failures when invoking the git binary.
type GitError struct {
	Args   []string
	Output string
	Err    error

	// Conflicts lists paths git reported as conflicting, when the command was a
	// merge or pull.
	Conflicts []string
}

func (e *GitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("git %s: %v\n%s", strings.Join(e.Args, " "), e.Err, strings.TrimSpace(e.Output))
}

func (e *GitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// GitOutput returns what git printed, without the command line.
func (e *GitError) GitOutput() string {
	if e == nil {
		return ""
	}
	return e.Output
}

// ConflictedPaths returns the structured conflict list parsed from git's output.
func (e *GitError) ConflictedPaths() []string {
	if e == nil {
		return nil
	}
	return e.Conflicts
}

func attachConflicts(err error) {
	var gitErr *GitError
	if errors.As(err, &gitErr) {
		gitErr.Conflicts = parseConflictPaths(gitErr.Output)
	}
}

// parseConflictPaths extracts paths from lines such as
// "CONFLICT (content): Merge conflict in a.txt" and
// "CONFLICT (modify/delete): a.txt deleted in HEAD and modified in topic.".
func parseConflictPaths(output string) []string {
	var paths []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "CONFLICT (") {
			continue
		}

		var path string
		if idx := strings.Index(line, "Merge conflict in "); idx >= 0 {
			path = strings.TrimSpace(line[idx+len("Merge conflict in "):])
		} else if idx := strings.Index(line, "): "); idx >= 0 {
			fields := strings.Fields(line[idx+3:])
			if len(fields) > 0 {
				path = fields[0]
			}
		}

		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	return paths
}

// parseStatus reads `git status --porcelain=v2 --branch` output.
func parseStatus(output string) Status {
	var status Status

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		switch line[0] {
		case '#':
			if head, ok := strings.CutPrefix(line, "# branch.head "); ok {
				if head != "(detached)" {
					status.CurrentBranch = head
				}
			}
		case '1':
			// 1 XY sub mH mI mW hH hI path
			fields := strings.SplitN(line, " ", 9)
			if len(fields) == 9 {
				addTrackedChange(&status, fields[1], fields[8])
			}
		case '2':
			// 2 XY sub mH mI mW hH hI Xscore path<TAB>origPath
			fields := strings.SplitN(line, " ", 10)
			if len(fields) == 10 {
				path, _, _ := strings.Cut(fields[9], "\t")
				addTrackedChange(&status, fields[1], path)
			}
		case 'u':
			// u XY sub m1 m2 m3 mW h1 h2 h3 path
			fields := strings.SplitN(line, " ", 11)
			if len(fields) == 11 {
				status.Conflicted = append(status.Conflicted, fields[10])
			}
		case '?':
			status.Untracked = append(status.Untracked, strings.TrimPrefix(line, "? "))
		}
	}

	return status
}

func addTrackedChange(status *Status, xy, path string) {
	if len(xy) != 2 {
		return
	}
	if xy[0] != '.' {
		status.Staged = append(status.Staged, path)
	}
	if xy[1] != '.' {
		status.Modified = append(status.Modified, path)
	}
}
