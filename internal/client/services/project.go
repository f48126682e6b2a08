package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/google/uuid"
)

// ErrNoAccount is returned when a project is created before any account exists.
var ErrNoAccount = errors.New("no local account, run the account command first")

type ProjectStore interface {
	SaveProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	CurrentAccount(ctx context.Context) (*models.Account, error)
}

// ProjectUpdate lists the fields to change; nil means keep.
type ProjectUpdate struct {
	Title    *string
	Metadata *models.EditMetadata
}

type ProjectService interface {
	Create(ctx context.Context, title string, meta models.EditMetadata) (*models.Project, error)
	Update(ctx context.Context, id string, upd ProjectUpdate) (*models.Project, error)
	SetStatus(ctx context.Context, id string, status string) (*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
}

type projectService struct {
	store ProjectStore
	now   func() time.Time
}

func NewProjectService(store ProjectStore) ProjectService {
	return &projectService{store: store, now: time.Now}
}

func (s *projectService) Create(ctx context.Context, title string, meta models.EditMetadata) (*models.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}

	owner, err := s.store.CurrentAccount(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrNoAccount
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Project{
		SyncState: models.SyncState{LocalID: uuid.NewString()},
		Title:     title,
		Status:    models.ProjectStatusDraft,
		OwnerID:   owner.LocalID,
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, p.LocalID)
}

func (s *projectService) Update(ctx context.Context, id string, upd ProjectUpdate) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
		}
		p.Title = title
	}
	if upd.Metadata != nil {
		p.Metadata = *upd.Metadata
	}
	return s.save(ctx, p)
}

func (s *projectService) SetStatus(ctx context.Context, id string, status string) (*models.Project, error) {
	st, err := models.ParseProjectStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = st
	return s.save(ctx, p)
}

func (s *projectService) save(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.UpdatedAt = s.now().UTC()
	if err := s.store.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, p.LocalID)
}

func (s *projectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *projectService) List(ctx context.Context) ([]models.Project, error) {
	return s.store.ListProjects(ctx)
}
