package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/reelsync/internal/buildinfo"
	"github.com/dmitrijs2005/reelsync/internal/client/config"
	"github.com/dmitrijs2005/reelsync/internal/client/services"
	"github.com/dmitrijs2005/reelsync/internal/client/store"
	"github.com/dmitrijs2005/reelsync/internal/client/syncer"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitRetry   = 2
	ExitFailure = 3
)

// Syncer runs sync passes. *scheduler.Scheduler satisfies it.
type Syncer interface {
	Once(ctx context.Context) syncer.Report
	Run(ctx context.Context) error
}

// StatusSource reports pending work and the last recorded run.
type StatusSource interface {
	DirtyCounts(ctx context.Context) (accounts, projects int, err error)
	LastRun(ctx context.Context) (store.RunRecord, error)
}

type App struct {
	config   *config.Config
	accounts services.AccountService
	projects services.ProjectService
	status   StatusSource
	sync     Syncer

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, as services.AccountService, ps services.ProjectService, st StatusSource, s Syncer) *App {
	return &App{
		config:   c,
		accounts: as,
		projects: ps,
		status:   st,
		sync:     s,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

var help = [][2]string{
	{"sync", "run one sync pass"},
	{"run", "sync periodically until interrupted"},
	{"status", "show pending changes and the last sync"},
	{"login [email]", "log in and store the access token"},
	{"register [email] [name]", "create a server account"},
	{"logout", "forget the access token"},
	{"account [email] [name]", "show or edit the local profile"},
	{"projects", "list local projects"},
	{"project-add <title>", "create a draft project"},
	{"project-rename <id> <title>", "change a project title"},
	{"project-status <id> <status>", "set draft, rendering, completed or failed"},
	{"project-meta <id>", "replace edit metadata from stdin"},
	{"version", "print build information"},
}

// Execute runs the command named by args[0] and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return ExitOK
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		a.usage()
		return ExitOK
	case "version":
		buildinfo.PrintBuildData(a.out)
		return ExitOK
	case "sync":
		return a.cmdSync(ctx)
	case "run":
		return a.cmdRun(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "account":
		return a.cmdAccount(ctx, rest)
	case "projects", "list":
		return a.cmdProjects(ctx)
	case "project-add":
		return a.cmdProjectAdd(ctx, rest)
	case "project-rename":
		return a.cmdProjectRename(ctx, rest)
	case "project-status":
		return a.cmdProjectStatus(ctx, rest)
	case "project-meta":
		return a.cmdProjectMeta(ctx, rest)
	default:
		a.printf("unknown command %q\n", cmd)
		a.usage()
		return ExitError
	}
}

func (a *App) usage() {
	a.printf("Usage: reelsync [flags] <command> [args]\n\nCommands:\n")
	for _, h := range help {
		a.printf("  %-30s %s\n", h[0], h[1])
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) fail(err error) int {
	a.printf("error: %v\n", err)
	return ExitError
}

func (a *App) badUsage(usage string) int {
	a.printf("usage: reelsync %s\n", usage)
	return ExitError
}

// promptArg returns args[i] when present, otherwise asks for it.
func (a *App) promptArg(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

func joinFrom(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return strings.Join(args[i:], " ")
}
