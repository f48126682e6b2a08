package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "local_id", "email", "username", "is_pro", "password_hash", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(id,\s*local_id,\s*email,\s*username,\s*is_pro,\s*password_hash\).*RETURNING\s+created_at,\s*updated_at$`).
		WithArgs("u1", "", "ann@example.com", "ann", false, "hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u, err := repo.Create(context.Background(), &models.User{ID: "u1", Email: "ann@example.com", UserName: "ann", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, now, u.CreatedAt)
}

func TestCreate_Conflict(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u1", Email: "ann@example.com"})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users.*ON\s+CONFLICT\s+\(email\)\s+DO\s+UPDATE.*RETURNING\s+id,`).
		WithArgs("new-id", "loc-1", "ann@example.com", "Ann", true).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("old-id", "loc-1", "ann@example.com", "Ann", true, "hash", now, now))

	u, err := repo.Upsert(context.Background(), &models.User{ID: "new-id", LocalID: "loc-1", Email: "ann@example.com", UserName: "Ann", IsPro: true})
	require.NoError(t, err)
	assert.Equal(t, "old-id", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestGetters(t *testing.T) {
	now := time.Now().UTC()
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(cols).AddRow("u1", "loc", "a@b.c", "a", false, "", now, now)
	}

	tests := []struct {
		name  string
		query string
		arg   string
		call  func(r *PostgresRepository) (*models.User, error)
	}{
		{"email", `WHERE\s+email\s*=\s*\$1`, "a@b.c", func(r *PostgresRepository) (*models.User, error) {
			return r.GetByEmail(context.Background(), "a@b.c")
		}},
		{"id", `WHERE\s+id\s*=\s*\$1`, "u1", func(r *PostgresRepository) (*models.User, error) {
			return r.GetByID(context.Background(), "u1")
		}},
		{"local id", `WHERE\s+local_id\s*=\s*\$1`, "loc", func(r *PostgresRepository) (*models.User, error) {
			return r.GetByLocalID(context.Background(), "loc")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(tt.query).WithArgs(tt.arg).WillReturnRows(row())
			u, err := tt.call(repo)
			require.NoError(t, err)
			assert.Equal(t, "u1", u.ID)

			mock.ExpectQuery(tt.query).WithArgs(tt.arg).WillReturnError(sql.ErrNoRows)
			_, err = tt.call(repo)
			require.ErrorIs(t, err, common.ErrNotFound)
		})
	}
}

func TestSetPasswordHash(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("u1", "h").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPasswordHash(context.Background(), "u1", "h"))

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("ghost", "h").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.SetPasswordHash(context.Background(), "ghost", "h"), common.ErrNotFound)
}
