package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
)

type Repository interface {
	// Save inserts or updates profile fields and marks the account dirty.
	Save(ctx context.Context, a *models.Account) error

	// Get returns common.ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (*models.Account, error)

	// First returns the earliest created account or common.ErrNotFound.
	First(ctx context.Context) (*models.Account, error)

	ListDirty(ctx context.Context) ([]models.Account, error)
	CountDirty(ctx context.Context) (int, error)

	// MarkSynced clears dirty when version still matches and raises
	// last_synced_at to syncedAt. Unknown ids are ignored.
	MarkSynced(ctx context.Context, id string, version int64, syncedAt time.Time) error

	// AssignRemoteID sets remote_id only when it is still empty.
	AssignRemoteID(ctx context.Context, id, remoteID string) error

	SetToken(ctx context.Context, id, token string) error
}
