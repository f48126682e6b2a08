package projects

import (
	"context"

	"github.com/dmitrijs2005/reelsync/internal/server/models"
)

type Repository interface {
	// Upsert stores p unless the stored copy has a later UpdatedAt. It
	// reports whether the row was written.
	Upsert(ctx context.Context, p *models.Project) (bool, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
}
