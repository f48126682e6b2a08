package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/dbx"
	"github.com/dmitrijs2005/reelsync/internal/timex"
)

const selectColumns = `local_id, remote_id, owner_id, title, status, edit_metadata,
	dirty, last_synced_at, version, created_at, updated_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts p by local id and marks it dirty.
func (r *SQLiteRepository) Save(ctx context.Context, p *models.Project) error {
	if p.LocalID == "" {
		return fmt.Errorf("%w: project without local id", common.ErrValidation)
	}
	if _, err := models.ParseProjectStatus(string(p.Status)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	query := `INSERT INTO projects (local_id, owner_id, title, status, edit_metadata, dirty, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, 1, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			title = excluded.title,
			status = excluded.status,
			edit_metadata = excluded.edit_metadata,
			dirty = 1,
			version = projects.version + 1,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		p.LocalID, p.OwnerID, p.Title, string(p.Status), string(p.Metadata),
		timex.ToMillis(p.CreatedAt), timex.ToMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM projects WHERE local_id = ?`, id)
	p, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Project, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM projects ORDER BY created_at, rowid`)
}

func (r *SQLiteRepository) ListDirty(ctx context.Context) ([]models.Project, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM projects WHERE dirty = 1 ORDER BY created_at, rowid`)
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []models.Project
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountDirty(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE dirty = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dirty projects: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64, syncedAt time.Time) error {
	query := `UPDATE projects SET
			dirty = CASE WHEN version = ? THEN 0 ELSE dirty END,
			last_synced_at = MAX(COALESCE(last_synced_at, 0), ?)
		WHERE local_id = ?`
	if _, err := r.db.ExecContext(ctx, query, version, timex.ToMillis(syncedAt), id); err != nil {
		return fmt.Errorf("failed to mark project synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AssignRemoteID(ctx context.Context, id, remoteID string) error {
	if remoteID == "" {
		return nil
	}
	query := `UPDATE projects SET remote_id = ? WHERE local_id = ? AND (remote_id IS NULL OR remote_id = '')`
	if _, err := r.db.ExecContext(ctx, query, remoteID, id); err != nil {
		return fmt.Errorf("failed to assign project remote id: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Project, error) {
	var (
		p          models.Project
		remoteID   sql.NullString
		status     string
		meta       string
		lastSynced sql.NullInt64
		createdAt  int64
		updatedAt  int64
	)
	err := s.Scan(&p.LocalID, &remoteID, &p.OwnerID, &p.Title, &status, &meta,
		&p.Dirty, &lastSynced, &p.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.RemoteID = remoteID.String
	p.Status = models.ProjectStatus(status)
	p.Metadata = models.EditMetadata(meta)
	if lastSynced.Valid {
		p.LastSyncedAt = timex.FromMillis(lastSynced.Int64)
	}
	p.CreatedAt = timex.FromMillis(createdAt)
	p.UpdatedAt = timex.FromMillis(updatedAt)
	return &p, nil
}
