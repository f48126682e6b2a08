package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"github.com/google/uuid"
)

type AccountStore interface {
	SaveAccount(ctx context.Context, a *models.Account) error
	CurrentAccount(ctx context.Context) (*models.Account, error)
	SetAccountToken(ctx context.Context, id, token string) error
}

// Authenticator is the server side of login and registration.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*wire.AuthResponse, error)
	Register(ctx context.Context, email, password, username string) (*wire.AuthResponse, error)
}

type AccountService interface {
	// Save creates the session account or updates its profile.
	Save(ctx context.Context, email, displayName string, isPro bool) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.Account, error)
	Register(ctx context.Context, email, password, displayName string) (*models.Account, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*models.Account, error)
}

type accountService struct {
	store AccountStore
	auth  Authenticator
	now   func() time.Time
}

func NewAccountService(store AccountStore, auth Authenticator) AccountService {
	return &accountService{store: store, auth: auth, now: time.Now}
}

func (s *accountService) Current(ctx context.Context) (*models.Account, error) {
	return s.store.CurrentAccount(ctx)
}

func (s *accountService) Save(ctx context.Context, email, displayName string, isPro bool) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	acc, err := s.store.CurrentAccount(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		acc = &models.Account{SyncState: models.SyncState{LocalID: uuid.NewString()}}
	case err != nil:
		return nil, err
	case acc.Email == email && acc.DisplayName == displayName && acc.IsPro == isPro:
		// unchanged profile stays clean
		return acc, nil
	}

	acc.Email = email
	acc.DisplayName = displayName
	acc.IsPro = isPro
	acc.UpdatedAt = s.now().UTC()

	if err := s.store.SaveAccount(ctx, acc); err != nil {
		return nil, err
	}
	return s.store.CurrentAccount(ctx)
}

func (s *accountService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, email, "", resp.AccessToken)
}

func (s *accountService) Register(ctx context.Context, email, password, displayName string) (*models.Account, error) {
	resp, err := s.auth.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, email, displayName, resp.AccessToken)
}

// attach makes sure a local account for email exists and stores token on it.
// A token change alone does not dirty the account.
func (s *accountService) attach(ctx context.Context, email, displayName, token string) (*models.Account, error) {
	acc, err := s.store.CurrentAccount(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		acc, err = s.Save(ctx, email, displayName, false)
	case err != nil:
	case acc.Email != email || (displayName != "" && acc.DisplayName != displayName):
		name := acc.DisplayName
		if displayName != "" {
			name = displayName
		}
		acc, err = s.Save(ctx, email, name, acc.IsPro)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.SetAccountToken(ctx, acc.LocalID, token); err != nil {
		return nil, err
	}
	acc.Token = token
	return acc, nil
}

func (s *accountService) Logout(ctx context.Context) error {
	acc, err := s.store.CurrentAccount(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.store.SetAccountToken(ctx, acc.LocalID, "")
}
