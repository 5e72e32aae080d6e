package git

import (
	"context"
	"log/slog"
)

// NewDryRunExecutor wraps inner so that gateways it opens read real repository
// state but skip every command that would change it.
func NewDryRunExecutor(inner Executor, logger *slog.Logger) Executor {
	return &dryRunExecutor{inner: inner, log: logger}
}

type dryRunExecutor struct {
	inner Executor
	log   *slog.Logger
}

func (e *dryRunExecutor) Open(ctx context.Context, path string) (Gateway, error) {
	gw, err := e.inner.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &dryRunGateway{inner: gw, log: e.log}, nil
}

type dryRunGateway struct {
	inner Gateway
	log   *slog.Logger
}

func (g *dryRunGateway) skip(op string, attrs ...any) error {
	if g.log != nil {
		g.log.Info("dry run: skipping git "+op, attrs...)
	}
	return nil
}

func (g *dryRunGateway) Status(ctx context.Context) (Status, error) {
	return g.inner.Status(ctx)
}

func (g *dryRunGateway) LocalBranches(ctx context.Context) (Branches, error) {
	return g.inner.LocalBranches(ctx)
}

func (g *dryRunGateway) Remotes(ctx context.Context) ([]Remote, error) {
	return g.inner.Remotes(ctx)
}

func (g *dryRunGateway) Checkout(ctx context.Context, branch string) error {
	return g.skip("checkout", "branch", branch)
}

func (g *dryRunGateway) Pull(ctx context.Context, remote, branch string) error {
	return g.skip("pull", "remote", remote, "branch", branch)
}

func (g *dryRunGateway) Merge(ctx context.Context, branches ...string) error {
	return g.skip("merge", "branches", branches)
}

func (g *dryRunGateway) Push(ctx context.Context, remote, branch string) error {
	return g.skip("push", "remote", remote, "branch", branch)
}

func (g *dryRunGateway) PushSetUpstream(ctx context.Context, remote, branch string) error {
	return g.skip("push --set-upstream", "remote", remote, "branch", branch)
}

func (g *dryRunGateway) Stash(ctx context.Context) error {
	return g.skip("stash")
}

func (g *dryRunGateway) StashPop(ctx context.Context) error {
	return g.skip("stash pop")
}

func (g *dryRunGateway) AbortMerge(ctx context.Context) error {
	return g.skip("merge --abort")
}
