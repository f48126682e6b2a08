package projects

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "local_id", "user_id", "title", "status", "clips_meta_json", "updated_at", "synced_at"}

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

func TestUpsert(t *testing.T) {
	at := time.UnixMilli(1700000000000).UTC()
	p := &models.Project{ID: "p1", LocalID: "p1", UserID: "u1", Title: "Trip", Status: "draft", UpdatedAt: at}
	q := `(?s)INSERT\s+INTO\s+projects.*ON\s+CONFLICT\s+\(id\)\s+DO\s+UPDATE.*WHERE\s+projects\.updated_at\s*<=\s*EXCLUDED\.updated_at$`

	tests := []struct {
		name     string
		affected int64
		err      error
		want     bool
		wantErr  bool
	}{
		{name: "written", affected: 1, want: true},
		{name: "stale", affected: 0, want: false},
		{name: "db error", err: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			exp := mock.ExpectExec(q).WithArgs("p1", "p1", "u1", "Trip", "draft", "", at)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			got, err := repo.Upsert(context.Background(), p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.UnixMilli(1700000000000).UTC()

	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+id\s*=\s*\$1`).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "l1", "u1", "Trip", "rendering", "{}", at, at))
	p, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "rendering", p.Status)
	assert.Equal(t, "{}", p.ClipsMetaJSON)

	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+id\s*=\s*\$1`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.UnixMilli(1700000000000).UTC()

	mock.ExpectQuery(`FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p2", "l2", "u1", "B", "draft", "", at, at).
			AddRow("p1", "l1", "u1", "A", "completed", "", at, at))

	list, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID)
	assert.Equal(t, "completed", list[1].Status)
}

func TestListByUser_Error(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+projects`).WithArgs("u1").WillReturnError(errors.New("down"))
	_, err := repo.ListByUser(context.Background(), "u1")
	require.Error(t, err)
}
