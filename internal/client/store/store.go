// Package store is the Dirty Record Store: accounts and projects with their
// sync bookkeeping, backed by SQLite.
//
// Every method takes the same lock, so listing dirty records, marking them
// synced and the local mutation paths never interleave within one process.
package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/reelsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/reelsync/internal/client/repositories/projects"
	"github.com/dmitrijs2005/reelsync/internal/dbx"
)

type Store struct {
	mu       sync.Mutex
	db       *sql.DB
	accounts accounts.Repository
	projects projects.Repository
	meta     metadata.Repository
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:       db,
		accounts: accounts.NewSQLiteRepository(db),
		projects: projects.NewSQLiteRepository(db),
		meta:     metadata.NewSQLiteRepository(db),
	}
}

// Open opens and migrates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListDirtyAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.ListDirty(ctx)
}

func (s *Store) ListDirtyProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.ListDirty(ctx)
}

// MarkBatchSynced assigns remote ids and marks every acknowledged record
// synced in one transaction. On error no record changes.
func (s *Store) MarkBatchSynced(ctx context.Context, accs, projs []models.SyncAck, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ar := accounts.NewSQLiteRepository(tx)
		for _, a := range accs {
			if err := ar.AssignRemoteID(ctx, a.LocalID, a.RemoteID); err != nil {
				return err
			}
			if err := ar.MarkSynced(ctx, a.LocalID, a.Version, syncedAt); err != nil {
				return err
			}
		}

		pr := projects.NewSQLiteRepository(tx)
		for _, p := range projs {
			if err := pr.AssignRemoteID(ctx, p.LocalID, p.RemoteID); err != nil {
				return err
			}
			if err := pr.MarkSynced(ctx, p.LocalID, p.Version, syncedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) SaveAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Save(ctx, a)
}

// CurrentAccount returns the session account or common.ErrNotFound.
func (s *Store) CurrentAccount(ctx context.Context) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.First(ctx)
}

func (s *Store) SetAccountToken(ctx context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.SetToken(ctx, id, token)
}

func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.Save(ctx, p)
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.Get(ctx, id)
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects.List(ctx)
}

// DirtyCounts returns the number of dirty accounts and projects.
func (s *Store) DirtyCounts(ctx context.Context) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.accounts.CountDirty(ctx)
	if err != nil {
		return 0, 0, err
	}
	p, err := s.projects.CountDirty(ctx)
	if err != nil {
		return 0, 0, err
	}
	return a, p, nil
}

// RunRecord is the bookkeeping of one sync run.
type RunRecord struct {
	At         time.Time
	Result     string
	ServerTime time.Time
}

// RecordRun stores the outcome of a sync run in sync_meta.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := metadata.SetTime(ctx, s.meta, metadata.KeyLastRunAt, rec.At); err != nil {
		return err
	}
	if err := s.meta.Set(ctx, metadata.KeyLastResult, []byte(rec.Result)); err != nil {
		return err
	}
	if !rec.ServerTime.IsZero() {
		if err := metadata.SetTime(ctx, s.meta, metadata.KeyLastServerTime, rec.ServerTime); err != nil {
			return err
		}
		if err := metadata.SetTime(ctx, s.meta, metadata.KeyLastSuccessAt, rec.At); err != nil {
			return err
		}
	}
	return nil
}

// LastRun returns the most recent RunRecord; Result is empty when no run was
// recorded yet.
func (s *Store) LastRun(ctx context.Context) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec RunRecord
	var err error
	if rec.At, err = metadata.GetTime(ctx, s.meta, metadata.KeyLastRunAt); err != nil {
		return rec, err
	}
	if rec.Result, err = metadata.GetString(ctx, s.meta, metadata.KeyLastResult); err != nil {
		return rec, err
	}
	if rec.ServerTime, err = metadata.GetTime(ctx, s.meta, metadata.KeyLastServerTime); err != nil {
		return rec, err
	}
	return rec, nil
}
