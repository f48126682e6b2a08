package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/dbx"
	"github.com/dmitrijs2005/reelsync/internal/server/models"
)

const projectColumns = `id, local_id, user_id, title, status, clips_meta_json, updated_at, synced_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProject(row interface{ Scan(...any) error }, p *models.Project) error {
	return row.Scan(&p.ID, &p.LocalID, &p.UserID, &p.Title, &p.Status, &p.ClipsMetaJSON, &p.UpdatedAt, &p.SyncedAt)
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Project) (bool, error) {
	query :=
		`INSERT INTO projects (id, local_id, user_id, title, status, clips_meta_json, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET local_id = EXCLUDED.local_id,
		     title = EXCLUDED.title,
		     status = EXCLUDED.status,
		     clips_meta_json = EXCLUDED.clips_meta_json,
		     updated_at = EXCLUDED.updated_at,
		     synced_at = now()
		 WHERE projects.updated_at <= EXCLUDED.updated_at`

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.LocalID, p.UserID, p.Title, p.Status, p.ClipsMetaJSON, p.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p := &models.Project{}
	if err := scanProject(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY updated_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
