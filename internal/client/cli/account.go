package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/reelsync/internal/client/client"
	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/common"
)

func describeAccount(acc *models.Account) string {
	s := acc.Email
	if acc.DisplayName != "" {
		s = fmt.Sprintf("%s <%s>", acc.DisplayName, acc.Email)
	}
	if acc.IsPro {
		s += " [pro]"
	}
	if acc.Token == "" {
		s += ", logged out"
	}
	if !acc.Synced() {
		s += ", not synced"
	}
	return s
}

func (a *App) cmdAccount(ctx context.Context, args []string) int {
	if len(args) == 0 {
		acc, err := a.accounts.Current(ctx)
		if errors.Is(err, common.ErrNotFound) {
			a.printf("no local account\n")
			return ExitOK
		}
		if err != nil {
			return a.fail(err)
		}
		a.printf("%s\nlocal id:  %s\nremote id: %s\n", describeAccount(acc), acc.LocalID, acc.RemoteID)
		return ExitOK
	}

	isPro := false
	if cur, err := a.accounts.Current(ctx); err == nil {
		isPro = cur.IsPro
	}

	acc, err := a.accounts.Save(ctx, args[0], joinFrom(args, 1), isPro)
	if err != nil {
		return a.fail(err)
	}
	a.printf("account saved: %s\n", describeAccount(acc))
	a.autoSync(ctx)
	return ExitOK
}

func (a *App) credentials(args []string) (string, string, error) {
	email, err := a.promptArg(args, 0, "Enter email")
	if err != nil {
		return "", "", err
	}
	if email == "" {
		return "", "", fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) int {
	email, password, err := a.credentials(args)
	if err != nil {
		return a.fail(err)
	}

	acc, err := a.accounts.Login(ctx, email, password)
	switch {
	case client.IsUnauthorized(err):
		a.printf("login failed: wrong email or password\n")
		return ExitError
	case errors.Is(err, client.ErrUnavailable):
		a.printf("login failed: server unavailable\n")
		return ExitError
	case err != nil:
		return a.fail(err)
	}

	a.printf("logged in as %s\n", acc.Email)
	a.autoSync(ctx)
	return ExitOK
}

func (a *App) cmdRegister(ctx context.Context, args []string) int {
	email, password, err := a.credentials(args)
	if err != nil {
		return a.fail(err)
	}
	name := joinFrom(args, 1)

	acc, err := a.accounts.Register(ctx, email, password, name)
	switch {
	case errors.Is(err, common.ErrConflict):
		a.printf("register failed: %s is already registered\n", email)
		return ExitError
	case err != nil:
		return a.fail(err)
	}

	a.printf("registered %s\n", acc.Email)
	a.autoSync(ctx)
	return ExitOK
}

func (a *App) cmdLogout(ctx context.Context) int {
	if err := a.accounts.Logout(ctx); err != nil {
		return a.fail(err)
	}
	a.printf("logged out\n")
	return ExitOK
}
