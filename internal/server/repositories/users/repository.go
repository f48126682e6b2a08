package users

import (
	"context"

	"github.com/dmitrijs2005/reelsync/internal/server/models"
)

type Repository interface {
	// Create inserts a registered user; an existing email is common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// Upsert creates or updates the profile of the user with user.Email and
	// returns the stored row. Password hashes are never touched.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByLocalID(ctx context.Context, localID string) (*models.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}
