package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/cryptox"
	"github.com/dmitrijs2005/reelsync/internal/dbx"
	"github.com/dmitrijs2005/reelsync/internal/server/auth"
	"github.com/dmitrijs2005/reelsync/internal/server/config"
	"github.com/dmitrijs2005/reelsync/internal/server/models"
	"github.com/dmitrijs2005/reelsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"github.com/google/uuid"
)

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates an account with a password. An account that so far was
// only created by sync (no password) is claimed instead.
func (s *UserService) Register(ctx context.Context, email, password, username string) (*wire.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	user, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		existing, err := repo.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, common.ErrNotFound):
			return repo.Create(ctx, &models.User{
				ID:           uuid.NewString(),
				Email:        email,
				UserName:     username,
				PasswordHash: hash,
			})
		case err != nil:
			return nil, err
		case existing.PasswordHash != "":
			return nil, common.ErrConflict
		}

		if err := repo.SetPasswordHash(ctx, existing.ID, hash); err != nil {
			return nil, err
		}
		return existing, nil
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(user.ID)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*wire.AuthResponse, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if user.PasswordHash == "" {
		return nil, common.ErrUnauthorized
	}
	if err := cryptox.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	return s.issue(user.ID)
}

// Authenticate returns the user id carried by a valid access token.
func (s *UserService) Authenticate(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) issue(userID string) (*wire.AuthResponse, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &wire.AuthResponse{UserID: userID, AccessToken: token}, nil
}
