package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/client"
	"github.com/dmitrijs2005/reelsync/internal/client/config"
	"github.com/dmitrijs2005/reelsync/internal/client/services"
	"github.com/dmitrijs2005/reelsync/internal/client/store"
	"github.com/dmitrijs2005/reelsync/internal/client/syncer"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	result  syncer.Result
	onceN   int
	runErr  error
	runSeen bool
}

func (f *fakeSyncer) Once(context.Context) syncer.Report {
	f.onceN++
	return syncer.Report{Result: f.result, Accounts: 1, Projects: 2, Duration: 15 * time.Millisecond}
}

func (f *fakeSyncer) Run(ctx context.Context) error {
	f.runSeen = true
	if f.runErr != nil {
		return f.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

type fakeAuth struct {
	err error
}

func (f *fakeAuth) Login(context.Context, string, string) (*wire.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &wire.AuthResponse{UserID: "u1", AccessToken: "tok"}, nil
}

func (f *fakeAuth) Register(context.Context, string, string, string) (*wire.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &wire.AuthResponse{UserID: "u1", AccessToken: "tok"}, nil
}

type testEnv struct {
	app   *App
	out   *bytes.Buffer
	store *store.Store
	sync  *fakeSyncer
	auth  *fakeAuth
}

func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AutoSync = false

	env := &testEnv{out: &bytes.Buffer{}, store: st, sync: &fakeSyncer{}, auth: &fakeAuth{}}
	env.app = &App{
		config:   cfg,
		accounts: services.NewAccountService(st, env.auth),
		projects: services.NewProjectService(st),
		status:   st,
		sync:     env.sync,
		reader:   rdr(input),
		out:      env.out,
	}
	return env
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func TestExecute_Help(t *testing.T) {
	env := newTestEnv(t, "")
	assert.Equal(t, ExitOK, env.app.Execute(context.Background(), nil))
	assert.Contains(t, env.out.String(), "project-status <id> <status>")

	env.out.Reset()
	assert.Equal(t, ExitError, env.app.Execute(context.Background(), []string{"bogus"}))
	assert.Contains(t, env.out.String(), `unknown command "bogus"`)
}

func TestExecute_SyncExitCodes(t *testing.T) {
	tests := []struct {
		result syncer.Result
		want   int
	}{
		{syncer.Success, ExitOK},
		{syncer.Retry, ExitRetry},
		{syncer.Failure, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.result.String(), func(t *testing.T) {
			env := newTestEnv(t, "")
			env.sync.result = tt.result
			assert.Equal(t, tt.want, env.app.Execute(context.Background(), []string{"sync"}))
			assert.Equal(t, 1, env.sync.onceN)
			assert.Contains(t, env.out.String(), "sync "+tt.result.String())
		})
	}
}

func TestExecute_Run(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, ExitOK, env.app.Execute(ctx, []string{"run"}))
	assert.True(t, env.sync.runSeen)

	env.sync.runErr = errors.New("boom")
	assert.Equal(t, ExitError, env.app.Execute(context.Background(), []string{"run"}))
}

func TestExecute_AccountAndProjects(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	assert.Equal(t, ExitError, env.app.Execute(ctx, []string{"project-add", "Trip"}))
	assert.Contains(t, env.out.String(), services.ErrNoAccount.Error())

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"account", "ann@example.com", "Ann", "Lee"}))
	acc, err := env.store.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", acc.DisplayName)
	assert.True(t, acc.Dirty)

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"project-add", "Summer", "trip"}))
	list, err := env.store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].LocalID
	assert.Equal(t, "Summer trip", list[0].Title)

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"project-status", id, "rendering"}))
	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"project-rename", id, "Winter"}))
	p, err := env.store.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "rendering", string(p.Status))
	assert.Equal(t, "Winter", p.Title)

	assert.Equal(t, ExitError, env.app.Execute(ctx, []string{"project-status", id, "lost"}))
	assert.Equal(t, ExitError, env.app.Execute(ctx, []string{"project-status", "missing", "draft"}))
	assert.Contains(t, env.out.String(), "project missing not found")
	assert.Equal(t, ExitError, env.app.Execute(ctx, []string{"project-status", id}))

	env.out.Reset()
	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"projects"}))
	assert.Contains(t, env.out.String(), "Winter")
	assert.Contains(t, env.out.String(), "pending")
}

func TestExecute_ProjectMeta(t *testing.T) {
	env := newTestEnv(t, "{\"clips\":[1,2]}\n\n")
	ctx := context.Background()
	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"account", "a@b.c"}))
	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"project-add", "Reel"}))
	list, err := env.store.ListProjects(ctx)
	require.NoError(t, err)

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"project-meta", list[0].LocalID}))
	p, err := env.store.GetProject(ctx, list[0].LocalID)
	require.NoError(t, err)
	assert.Equal(t, `{"clips":[1,2]}`, string(p.Metadata))
}

func TestExecute_Status(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"status"}))
	assert.Contains(t, env.out.String(), "account:  none")
	assert.Contains(t, env.out.String(), "last run: never")

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"account", "a@b.c"}))
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, env.store.RecordRun(ctx, store.RunRecord{At: at, Result: "success", ServerTime: at}))

	env.out.Reset()
	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"status"}))
	out := env.out.String()
	assert.Contains(t, out, "pending:  1 account(s), 0 project(s)")
	assert.Contains(t, out, "(success)")
	assert.Contains(t, out, "server:")
}

func TestExecute_Login(t *testing.T) {
	stubPassword(t, "pw")
	env := newTestEnv(t, "ann@example.com\n")
	ctx := context.Background()

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"login"}))
	acc, err := env.store.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", acc.Email)
	assert.Equal(t, "tok", acc.Token)

	require.Equal(t, ExitOK, env.app.Execute(ctx, []string{"logout"}))
	acc, err = env.store.CurrentAccount(ctx)
	require.NoError(t, err)
	assert.Empty(t, acc.Token)
}

func TestExecute_LoginErrors(t *testing.T) {
	stubPassword(t, "pw")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", fmt.Errorf("%w: status 401", client.ErrUnauthorized), "wrong email or password"},
		{"unavailable", fmt.Errorf("%w: dial", client.ErrUnavailable), "server unavailable"},
		{"other", errors.New("boom"), "error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.auth.err = tt.err
			assert.Equal(t, ExitError, env.app.Execute(context.Background(), []string{"login", "a@b.c"}))
			assert.Contains(t, env.out.String(), tt.want)
		})
	}
}

func TestExecute_RegisterConflict(t *testing.T) {
	stubPassword(t, "pw")
	env := newTestEnv(t, "")
	env.auth.err = common.ErrConflict
	assert.Equal(t, ExitError, env.app.Execute(context.Background(), []string{"register", "a@b.c", "Ann"}))
	assert.Contains(t, env.out.String(), "already registered")

	env.auth.err = nil
	env.out.Reset()
	require.Equal(t, ExitOK, env.app.Execute(context.Background(), []string{"register", "a@b.c", "Ann"}))
	acc, err := env.store.CurrentAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", acc.DisplayName)
}

func TestAutoSync(t *testing.T) {
	env := newTestEnv(t, "")
	env.app.config.AutoSync = true
	env.sync.result = syncer.Retry

	require.Equal(t, ExitOK, env.app.Execute(context.Background(), []string{"account", "a@b.c"}))
	assert.Equal(t, 1, env.sync.onceN)
	assert.Contains(t, env.out.String(), "sync retry")
}
