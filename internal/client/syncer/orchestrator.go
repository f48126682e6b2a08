package syncer

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/client"
	"github.com/dmitrijs2005/reelsync/internal/client/gate"
	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/google/uuid"
)

// Store is the part of the Dirty Record Store the orchestrator uses.
type Store interface {
	ListDirtyAccounts(ctx context.Context) ([]models.Account, error)
	ListDirtyProjects(ctx context.Context) ([]models.Project, error)
	// MarkBatchSynced applies every ack or none of them.
	MarkBatchSynced(ctx context.Context, accounts, projects []models.SyncAck, syncedAt time.Time) error
}

type Orchestrator struct {
	store  Store
	gate   gate.Gate
	client client.Client
	log    logging.Logger
	now    func() time.Time
}

type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(store Store, g gate.Gate, c client.Client, log logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		gate:   g,
		client: c,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs one sync run. It never panics and never returns an error.
func (o *Orchestrator) Run(ctx context.Context) Result {
	return o.RunReport(ctx).Result
}

// RunReport is Run with details about what happened.
func (o *Orchestrator) RunReport(ctx context.Context) (rep Report) {
	log := o.log.With("run", uuid.NewString())
	rep.StartedAt = o.now()

	defer func() {
		if p := recover(); p != nil {
			log.Error(ctx, "sync run panicked", "state", rep.Stage, "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			rep.Result = Retry
		}
		rep.Duration = o.now().Sub(rep.StartedAt)

		switch rep.Result {
		case Success:
			log.Info(ctx, "sync finished", "result", rep.Result, "accounts", rep.Accounts, "projects", rep.Projects, "took", rep.Duration)
		default:
			log.Warn(ctx, "sync finished", "result", rep.Result, "state", rep.Stage, "took", rep.Duration)
		}
	}()

	enter := func(s State) {
		log.Debug(ctx, "sync state", "from", rep.Stage, "to", s)
		rep.Stage = s
	}

	enter(Gating)
	if !o.gate.IsAvailable(ctx) {
		log.Info(ctx, "network unavailable, skipping sync")
		rep.Result = Retry
		return rep
	}

	enter(Batching)
	batch, err := o.buildBatch(ctx)
	if err != nil {
		log.Warn(ctx, "failed to read dirty records", "error", err)
		rep.Result = Retry
		return rep
	}
	if batch.Empty() {
		log.Debug(ctx, "nothing to sync")
		rep.Result = Success
		return rep
	}
	if batch.Account != nil {
		rep.Accounts = 1
	}
	rep.Projects = len(batch.Projects)

	enter(Pushing)
	out := o.client.Push(ctx, batch)
	switch out.Kind {
	case client.Accepted:
	case client.Rejected:
		log.Warn(ctx, "server rejected batch", "reason", out.Reason, "permanent", out.Permanent)
		if out.Permanent {
			rep.Result = Failure
		} else {
			rep.Result = Retry
		}
		return rep
	case client.TransportFailure:
		log.Warn(ctx, "sync transport failure", "error", out.Cause)
		rep.Result = Retry
		return rep
	default:
		log.Error(ctx, "unknown push outcome", "kind", out.Kind)
		rep.Result = Retry
		return rep
	}

	enter(Reconciling)
	syncedAt := out.ServerTime
	if syncedAt.IsZero() {
		syncedAt = batch.SentAt
	}
	if err := o.reconcile(ctx, batch, out.AssignedIDs, syncedAt); err != nil {
		log.Warn(ctx, "failed to reconcile accepted batch", "error", err)
		rep.Result = Retry
		return rep
	}
	log.Debug(ctx, "batch reconciled", "server_accounts", out.AccountsSynced, "server_projects", out.ProjectsSynced)

	rep.ServerTime = syncedAt
	rep.Result = Success
	return rep
}

// buildBatch takes the first dirty account and every dirty project.
func (o *Orchestrator) buildBatch(ctx context.Context) (client.Batch, error) {
	accounts, err := o.store.ListDirtyAccounts(ctx)
	if err != nil {
		return client.Batch{}, fmt.Errorf("list dirty accounts: %w", err)
	}
	projects, err := o.store.ListDirtyProjects(ctx)
	if err != nil {
		return client.Batch{}, fmt.Errorf("list dirty projects: %w", err)
	}

	b := client.Batch{Projects: projects, SentAt: o.now()}
	if len(accounts) > 0 {
		a := accounts[0]
		b.Account = &a
	}
	return b, nil
}

// reconcile assigns new remote ids and marks every record of b synced in
// one store call.
func (o *Orchestrator) reconcile(ctx context.Context, b client.Batch, assigned map[string]string, at time.Time) error {
	ack := func(st models.SyncState) models.SyncAck {
		a := models.SyncAck{LocalID: st.LocalID, Version: st.Version}
		if st.RemoteID == "" {
			a.RemoteID = assigned[st.LocalID]
		}
		return a
	}

	var accounts []models.SyncAck
	if b.Account != nil {
		accounts = append(accounts, ack(b.Account.SyncState))
	}
	projects := make([]models.SyncAck, 0, len(b.Projects))
	for _, p := range b.Projects {
		projects = append(projects, ack(p.SyncState))
	}
	return o.store.MarkBatchSynced(ctx, accounts, projects, at)
}
