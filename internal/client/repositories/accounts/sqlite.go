package accounts

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

const selectColumns = `local_id, remote_id, email, display_name, is_pro, token,
	dirty, last_synced_at, version, updated_at`

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, a *models.Account) error {
	if a.LocalID == "" {
		return fmt.Errorf("%w: account without local id", common.ErrValidation)
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}

	query := `INSERT INTO accounts (local_id, email, display_name, is_pro, token, dirty, version, updated_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), 1, 1, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			is_pro = excluded.is_pro,
			dirty = 1,
			version = accounts.version + 1,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		a.LocalID, a.Email, a.DisplayName, a.IsPro, a.Token, timex.ToMillis(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM accounts WHERE local_id = ?`, id)
	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) First(ctx context.Context) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM accounts ORDER BY rowid LIMIT 1`)
	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get first account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListDirty(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM accounts WHERE dirty = 1 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select dirty accounts: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountDirty(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE dirty = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dirty accounts: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64, syncedAt time.Time) error {
	query := `UPDATE accounts SET
			dirty = CASE WHEN version = ? THEN 0 ELSE dirty END,
			last_synced_at = MAX(COALESCE(last_synced_at, 0), ?)
		WHERE local_id = ?`
	if _, err := r.db.ExecContext(ctx, query, version, timex.ToMillis(syncedAt), id); err != nil {
		return fmt.Errorf("failed to mark account synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AssignRemoteID(ctx context.Context, id, remoteID string) error {
	if remoteID == "" {
		return nil
	}
	query := `UPDATE accounts SET remote_id = ? WHERE local_id = ? AND (remote_id IS NULL OR remote_id = '')`
	if _, err := r.db.ExecContext(ctx, query, remoteID, id); err != nil {
		return fmt.Errorf("failed to assign account remote id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET token = NULLIF(?, '') WHERE local_id = ?`, token, id)
	if err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Account, error) {
	var (
		a          models.Account
		remoteID   sql.NullString
		token      sql.NullString
		lastSynced sql.NullInt64
		updatedAt  int64
	)
	err := s.Scan(&a.LocalID, &remoteID, &a.Email, &a.DisplayName, &a.IsPro, &token,
		&a.Dirty, &lastSynced, &a.Version, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.RemoteID = remoteID.String
	a.Token = token.String
	if lastSynced.Valid {
		a.LastSyncedAt = timex.FromMillis(lastSynced.Int64)
	}
	a.UpdatedAt = timex.FromMillis(updatedAt)
	return &a, nil
}
