package projects

import (
	"context"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
)

type Repository interface {
	Save(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListDirty(ctx context.Context) ([]models.Project, error)
	CountDirty(ctx context.Context) (int, error)
	MarkSynced(ctx context.Context, id string, version int64, syncedAt time.Time) error
	AssignRemoteID(ctx context.Context, id, remoteID string) error
}
