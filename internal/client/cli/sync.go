package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/syncer"
)

func exitCode(r syncer.Result) int {
	switch r {
	case syncer.Success:
		return ExitOK
	case syncer.Failure:
		return ExitFailure
	default:
		return ExitRetry
	}
}

func (a *App) cmdSync(ctx context.Context) int {
	rep := a.sync.Once(ctx)
	a.printReport(rep)
	return exitCode(rep.Result)
}

func (a *App) cmdRun(ctx context.Context) int {
	a.printf("syncing every %s, press Ctrl+C to stop\n", a.config.SyncInterval)
	err := a.sync.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return a.fail(err)
	}
	return ExitOK
}

func (a *App) printReport(rep syncer.Report) {
	switch rep.Result {
	case syncer.Success:
		a.printf("sync %s: %d account(s), %d project(s) in %s\n",
			rep.Result, rep.Accounts, rep.Projects, rep.Duration.Round(time.Millisecond))
	default:
		a.printf("sync %s at %s\n", rep.Result, rep.Stage)
	}
}

// autoSync pushes right after a local change when enabled. Its outcome does
// not affect the command's exit code.
func (a *App) autoSync(ctx context.Context) {
	if a.config == nil || !a.config.AutoSync || a.sync == nil {
		return
	}
	a.printReport(a.sync.Once(ctx))
}

func (a *App) cmdStatus(ctx context.Context) int {
	if acc, err := a.accounts.Current(ctx); err == nil {
		a.printf("account:  %s\n", describeAccount(acc))
	} else {
		a.printf("account:  none\n")
	}

	accounts, projects, err := a.status.DirtyCounts(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.printf("pending:  %d account(s), %d project(s)\n", accounts, projects)

	last, err := a.status.LastRun(ctx)
	if err != nil {
		return a.fail(err)
	}
	if last.Result == "" {
		a.printf("last run: never\n")
		return ExitOK
	}
	a.printf("last run: %s (%s)\n", last.At.Local().Format(time.DateTime), last.Result)
	if !last.ServerTime.IsZero() {
		a.printf("server:   %s\n", last.ServerTime.Local().Format(time.DateTime))
	}
	return ExitOK
}
