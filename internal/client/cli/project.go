package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/client/services"
	"github.com/dmitrijs2005/reelsync/internal/common"
)

func (a *App) projectError(id string, err error) int {
	if errors.Is(err, common.ErrNotFound) {
		a.printf("project %s not found\n", id)
		return ExitError
	}
	return a.fail(err)
}

func (a *App) cmdProjects(ctx context.Context) int {
	list, err := a.projects.List(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(list) == 0 {
		a.printf("no projects\n")
		return ExitOK
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tUPDATED\tSYNC")
	for _, p := range list {
		state := "synced"
		if !p.Synced() {
			state = "pending"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.LocalID, p.Title, p.Status, p.UpdatedAt.Local().Format(time.DateTime), state)
	}
	if err := w.Flush(); err != nil {
		return a.fail(err)
	}
	return ExitOK
}

func (a *App) cmdProjectAdd(ctx context.Context, args []string) int {
	title := joinFrom(args, 0)
	if title == "" {
		return a.badUsage("project-add <title>")
	}

	p, err := a.projects.Create(ctx, title, "")
	if errors.Is(err, services.ErrNoAccount) {
		a.printf("%v\n", err)
		return ExitError
	}
	if err != nil {
		return a.fail(err)
	}
	a.printf("created project %s (%s)\n", p.LocalID, p.Title)
	a.autoSync(ctx)
	return ExitOK
}

func (a *App) cmdProjectRename(ctx context.Context, args []string) int {
	if len(args) < 2 {
		return a.badUsage("project-rename <id> <title>")
	}
	title := joinFrom(args, 1)

	p, err := a.projects.Update(ctx, args[0], services.ProjectUpdate{Title: &title})
	if err != nil {
		return a.projectError(args[0], err)
	}
	a.printf("renamed project %s to %s\n", p.LocalID, p.Title)
	a.autoSync(ctx)
	return ExitOK
}

func (a *App) cmdProjectStatus(ctx context.Context, args []string) int {
	if len(args) != 2 {
		return a.badUsage("project-status <id> <status>")
	}

	p, err := a.projects.SetStatus(ctx, args[0], args[1])
	if err != nil {
		return a.projectError(args[0], err)
	}
	a.printf("project %s is now %s\n", p.LocalID, p.Status)
	a.autoSync(ctx)
	return ExitOK
}

func (a *App) cmdProjectMeta(ctx context.Context, args []string) int {
	if len(args) != 1 {
		return a.badUsage("project-meta <id>")
	}

	text, err := GetMultiline(a.reader, "Paste edit metadata", a.out)
	if err != nil {
		return a.fail(err)
	}
	meta := models.EditMetadata(text)

	p, err := a.projects.Update(ctx, args[0], services.ProjectUpdate{Metadata: &meta})
	if err != nil {
		return a.projectError(args[0], err)
	}
	a.printf("updated edit metadata of %s (%d bytes)\n", p.LocalID, len(p.Metadata))
	a.autoSync(ctx)
	return ExitOK
}
