package projects

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/migrations"
	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func newProject(id string, created int64) *models.Project {
	return &models.Project{
		SyncState: models.SyncState{LocalID: id},
		Title:     "Project " + id,
		Status:    models.ProjectStatusDraft,
		OwnerID:   "acc",
		Metadata:  `{"clips":[]}`,
		CreatedAt: time.UnixMilli(created).UTC(),
	}
}

func TestSave_InsertAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, newProject("p1", 1000)))

	got, err := r.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.Dirty)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, models.ProjectStatusDraft, got.Status)
	assert.Equal(t, models.EditMetadata(`{"clips":[]}`), got.Metadata)
	assert.Equal(t, "acc", got.OwnerID)
	assert.Equal(t, time.UnixMilli(1000).UTC(), got.CreatedAt)
}

func TestSave_UpdateDirtiesAndBumpsVersion(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p := newProject("p1", 1000)
	require.NoError(t, r.Save(ctx, p))
	require.NoError(t, r.MarkSynced(ctx, "p1", 1, time.UnixMilli(5000)))

	p.Status = models.ProjectStatusRendering
	require.NoError(t, r.Save(ctx, p))

	got, err := r.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.Dirty)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, models.ProjectStatusRendering, got.Status)
	assert.Equal(t, time.UnixMilli(5000).UTC(), got.LastSyncedAt)
}

func TestSave_Validation(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.ErrorIs(t, r.Save(ctx, &models.Project{Status: models.ProjectStatusDraft}), common.ErrValidation)

	bad := newProject("p1", 1)
	bad.Status = "archived"
	require.ErrorIs(t, r.Save(ctx, bad), common.ErrValidation)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_OrderedByCreation(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, newProject("b", 2000)))
	require.NoError(t, r.Save(ctx, newProject("a", 1000)))
	require.NoError(t, r.Save(ctx, newProject("c", 3000)))
	require.NoError(t, r.MarkSynced(ctx, "c", 1, time.Now()))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].LocalID, all[1].LocalID, all[2].LocalID})

	dirty, err := r.ListDirty(ctx)
	require.NoError(t, err)
	require.Len(t, dirty, 2)
	assert.Equal(t, "a", dirty[0].LocalID)
	assert.Equal(t, "b", dirty[1].LocalID)

	n, err := r.CountDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMarkSynced_Semantics(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, newProject("p1", 1)))

	// unknown id
	require.NoError(t, r.MarkSynced(ctx, "ghost", 1, time.Now()))

	later := time.UnixMilli(9000).UTC()
	earlier := time.UnixMilli(3000).UTC()
	require.NoError(t, r.MarkSynced(ctx, "p1", 1, later))
	require.NoError(t, r.MarkSynced(ctx, "p1", 1, earlier))

	got, err := r.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, got.Dirty)
	assert.Equal(t, later, got.LastSyncedAt)
}

func TestMarkSynced_StaleVersion(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p := newProject("p1", 1)
	require.NoError(t, r.Save(ctx, p))
	p.Title = "edited while pushing"
	require.NoError(t, r.Save(ctx, p))

	require.NoError(t, r.MarkSynced(ctx, "p1", 1, time.UnixMilli(7000)))

	got, err := r.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.Dirty)
	assert.Equal(t, time.UnixMilli(7000).UTC(), got.LastSyncedAt)
}

func TestAssignRemoteID_OnlyOnce(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, newProject("p1", 1)))
	require.NoError(t, r.AssignRemoteID(ctx, "p1", "srv-1"))
	require.NoError(t, r.AssignRemoteID(ctx, "p1", "srv-2"))

	got, err := r.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", got.RemoteID)
	assert.Equal(t, "srv-1", got.WireID())
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Save(ctx, newProject("p", 1)), "failed to save project")
	_, err := r.List(ctx)
	require.ErrorContains(t, err, "failed to select projects")
	_, err = r.CountDirty(ctx)
	require.ErrorContains(t, err, "failed to count dirty projects")
	require.ErrorContains(t, r.AssignRemoteID(ctx, "p", "r"), "failed to assign project remote id")
}
