package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/dbx"
	"github.com/dmitrijs2005/reelsync/internal/server/models"
	"github.com/dmitrijs2005/reelsync/internal/server/repositories/projects"
	"github.com/dmitrijs2005/reelsync/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

type fakeUsers struct {
	byEmail   map[string]*models.User
	upsertErr error
}

func newFakeUsers(us ...*models.User) *fakeUsers {
	f := &fakeUsers{byEmail: map[string]*models.User{}}
	for _, u := range us {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrConflict
	}
	cp := *u
	f.byEmail[u.Email] = &cp
	return u, nil
}

func (f *fakeUsers) Upsert(_ context.Context, u *models.User) (*models.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if cur, ok := f.byEmail[u.Email]; ok {
		cur.LocalID, cur.UserName, cur.IsPro = u.LocalID, u.UserName, u.IsPro
		cp := *cur
		return &cp, nil
	}
	cp := *u
	f.byEmail[u.Email] = &cp
	return u, nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	for _, u := range f.byEmail {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByLocalID(_ context.Context, localID string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.LocalID == localID })
}

func (f *fakeUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeProjects struct {
	byID map[string]*models.Project
}

func (f *fakeProjects) Upsert(_ context.Context, p *models.Project) (bool, error) {
	if cur, ok := f.byID[p.ID]; ok && cur.UpdatedAt.After(p.UpdatedAt) {
		return false, nil
	}
	cp := *p
	f.byID[p.ID] = &cp
	return true, nil
}

func (f *fakeProjects) Get(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) ListByUser(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeManager struct {
	users    *fakeUsers
	projects *fakeProjects
}

func newFakeManager(us ...*models.User) *fakeManager {
	return &fakeManager{users: newFakeUsers(us...), projects: &fakeProjects{byID: map[string]*models.Project{}}}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository           { return m.users }
func (m *fakeManager) Projects(dbx.DBTX) projects.Repository     { return m.projects }

type fakeArchiver struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, userID, projectID string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, userID+"/"+projectID)
	return f.err
}

var fixedNow = time.UnixMilli(1700000000000).UTC()
