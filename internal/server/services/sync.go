package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/dbx"
	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/dmitrijs2005/reelsync/internal/server/archive"
	"github.com/dmitrijs2005/reelsync/internal/server/models"
	"github.com/dmitrijs2005/reelsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/reelsync/internal/timex"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"github.com/google/uuid"
)

const syncOKMessage = "Sync completed successfully"

type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archiver    archive.Archiver
	logger      logging.Logger
	now         func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, a archive.Archiver, l logging.Logger) *SyncService {
	if a == nil {
		a = archive.Nop{}
	}
	return &SyncService{
		db:          db,
		repomanager: m,
		archiver:    a,
		logger:      l.With("module", "sync_service"),
		now:         time.Now,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

// Rejection is the reply for a batch that failed validation. The client
// must not resend it unchanged.
func Rejection(err error) wire.SyncResponse {
	return wire.SyncResponse{Success: false, Message: err.Error(), Permanent: true}
}

func validateRequest(req *wire.SyncRequest) error {
	if req.User != nil && strings.TrimSpace(req.User.Email) == "" {
		return invalid("user email is required")
	}
	for i, p := range req.Projects {
		switch {
		case p.ProjectID == "":
			return invalid("project %d: projectId is required", i)
		case strings.TrimSpace(p.Title) == "":
			return invalid("project %s: title is required", p.ProjectID)
		case !models.ValidProjectStatus(p.Status):
			return invalid("project %s: unknown status %q", p.ProjectID, p.Status)
		}
	}
	return nil
}

type archiveJob struct {
	userID, projectID string
	meta              []byte
}

// Sync applies req with last-writer-wins semantics in one transaction.
// callerID is the authenticated user id or "" for anonymous calls. A batch
// that can never be accepted yields an error wrapping common.ErrValidation.
func (s *SyncService) Sync(ctx context.Context, callerID string, req wire.SyncRequest) (wire.SyncResponse, error) {
	if err := validateRequest(&req); err != nil {
		return wire.SyncResponse{}, err
	}

	resp := wire.SyncResponse{
		Success:     true,
		Message:     syncOKMessage,
		AssignedIDs: map[string]string{},
	}
	var jobs []archiveJob

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		projects := s.repomanager.Projects(tx)

		// owner local id -> server user id
		owners := map[string]string{}

		if u := req.User; u != nil {
			id := u.UserID
			if id == "" {
				id = uuid.NewString()
			}
			stored, err := users.Upsert(ctx, &models.User{
				ID:       id,
				LocalID:  u.LocalID,
				Email:    strings.TrimSpace(u.Email),
				UserName: u.Username,
				IsPro:    u.IsPro,
			})
			if err != nil {
				return fmt.Errorf("upsert user: %w", err)
			}
			if callerID != "" && stored.ID != callerID {
				return invalid("user %s does not match the access token", u.Email)
			}
			resp.UsersSynced = 1
			if u.LocalID != "" {
				owners[u.LocalID] = stored.ID
				resp.AssignedIDs[u.LocalID] = stored.ID
			}
		}

		for _, p := range req.Projects {
			ownerID, err := s.resolveOwner(ctx, users, owners, p.UserID, callerID)
			if err != nil {
				return err
			}

			existing, err := projects.Get(ctx, p.ProjectID)
			switch {
			case errors.Is(err, common.ErrNotFound):
			case err != nil:
				return fmt.Errorf("get project: %w", err)
			case existing.UserID != ownerID:
				return invalid("project %s belongs to another user", p.ProjectID)
			}

			written, err := projects.Upsert(ctx, &models.Project{
				ID:            p.ProjectID,
				LocalID:       p.LocalID,
				UserID:        ownerID,
				Title:         strings.TrimSpace(p.Title),
				Status:        p.Status,
				ClipsMetaJSON: p.ClipsMetaJSON,
				UpdatedAt:     timex.FromMillis(p.UpdatedAt),
			})
			if err != nil {
				return fmt.Errorf("upsert project: %w", err)
			}
			if !written {
				s.logger.Debug(ctx, "stale project ignored", "project_id", p.ProjectID)
			} else if p.ClipsMetaJSON != "" {
				jobs = append(jobs, archiveJob{userID: ownerID, projectID: p.ProjectID, meta: []byte(p.ClipsMetaJSON)})
			}

			resp.ProjectsSynced++
			if p.LocalID != "" {
				resp.AssignedIDs[p.LocalID] = p.ProjectID
			}
		}
		return nil
	})
	if err != nil {
		return wire.SyncResponse{}, err
	}

	for _, j := range jobs {
		if err := s.archiver.Archive(ctx, j.userID, j.projectID, j.meta); err != nil {
			s.logger.Warn(ctx, "metadata archive failed", "project_id", j.projectID, "error", err)
		}
	}

	resp.ServerTimestamp = s.now().UnixMilli()
	if len(resp.AssignedIDs) == 0 {
		resp.AssignedIDs = nil
	}
	s.logger.Info(ctx, "sync applied", "users", resp.UsersSynced, "projects", resp.ProjectsSynced)
	return resp, nil
}

type userLookup interface {
	GetByLocalID(ctx context.Context, localID string) (*models.User, error)
}

// resolveOwner maps a project's owner local id to a server user id: the
// user of this batch, then a previously synced user, then the caller.
func (s *SyncService) resolveOwner(ctx context.Context, users userLookup, owners map[string]string, localID, callerID string) (string, error) {
	if id, ok := owners[localID]; ok {
		return id, nil
	}

	if localID != "" {
		u, err := users.GetByLocalID(ctx, localID)
		switch {
		case err == nil:
			if callerID != "" && u.ID != callerID {
				return "", invalid("owner %s does not match the access token", localID)
			}
			owners[localID] = u.ID
			return u.ID, nil
		case !errors.Is(err, common.ErrNotFound):
			return "", fmt.Errorf("get owner: %w", err)
		}
	}

	if callerID != "" {
		owners[localID] = callerID
		return callerID, nil
	}
	return "", invalid("unknown project owner %q", localID)
}

// Projects lists the stored projects of userID, newest first, in wire form.
func (s *SyncService) Projects(ctx context.Context, userID string) ([]wire.Project, error) {
	owner, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	list, err := s.repomanager.Projects(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]wire.Project, 0, len(list))
	for _, p := range list {
		out = append(out, wire.Project{
			ProjectID:     p.ID,
			LocalID:       p.LocalID,
			UserID:        owner.LocalID,
			Title:         p.Title,
			Status:        p.Status,
			ClipsMetaJSON: p.ClipsMetaJSON,
			UpdatedAt:     timex.ToMillis(p.UpdatedAt),
		})
	}
	return out, nil
}
