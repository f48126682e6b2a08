package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
	"github.com/dmitrijs2005/reelsync/internal/timex"
	"github.com/dmitrijs2005/reelsync/internal/wire"
)

type Client interface {
	// Push sends one batch and classifies the reply.
	Push(ctx context.Context, b Batch) Outcome
	// Ping checks that the server answers.
	Ping(ctx context.Context) error
	Close() error
}

// Batch is the set of dirty records sent in one request.
type Batch struct {
	Account  *models.Account
	Projects []models.Project
	SentAt   time.Time
}

// Empty reports whether there is nothing to push.
func (b Batch) Empty() bool {
	return b.Account == nil && len(b.Projects) == 0
}

type OutcomeKind int

const (
	Accepted OutcomeKind = iota + 1
	Rejected
	TransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case TransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the classified reply to a Push. Only the fields of its Kind are
// meaningful.
type Outcome struct {
	Kind OutcomeKind

	// Accepted. The counts are advisory.
	AccountsSynced int
	ProjectsSynced int
	ServerTime     time.Time
	// AssignedIDs maps local ids to newly assigned remote ids.
	AssignedIDs map[string]string

	// Rejected.
	Reason    string
	Permanent bool

	// TransportFailure.
	Cause error
}

func acceptedOutcome(resp wire.SyncResponse) Outcome {
	return Outcome{
		Kind:           Accepted,
		AccountsSynced: resp.UsersSynced,
		ProjectsSynced: resp.ProjectsSynced,
		ServerTime:     timex.FromMillis(resp.ServerTimestamp),
		AssignedIDs:    resp.AssignedIDs,
	}
}

func rejectedOutcome(reason string, permanent bool) Outcome {
	return Outcome{Kind: Rejected, Reason: reason, Permanent: permanent}
}

func failureOutcome(err error) Outcome {
	return Outcome{Kind: TransportFailure, Cause: err}
}

// classify maps a decoded response body to an Outcome.
func classify(resp wire.SyncResponse) Outcome {
	if resp.Success {
		return acceptedOutcome(resp)
	}
	return rejectedOutcome(resp.Message, resp.Permanent)
}

// EncodeBatch builds the wire request for b.
func EncodeBatch(b Batch) wire.SyncRequest {
	req := wire.SyncRequest{
		Projects:          make([]wire.Project, 0, len(b.Projects)),
		LastSyncTimestamp: timex.ToMillis(b.SentAt),
	}
	if b.Account != nil {
		req.User = &wire.User{
			UserID:   b.Account.RemoteID,
			LocalID:  b.Account.LocalID,
			Email:    b.Account.Email,
			Username: b.Account.DisplayName,
			IsPro:    b.Account.IsPro,
		}
	}
	for _, p := range b.Projects {
		req.Projects = append(req.Projects, wire.Project{
			ProjectID:     p.WireID(),
			LocalID:       p.LocalID,
			UserID:        p.OwnerID,
			Title:         p.Title,
			Status:        string(p.Status),
			ClipsMetaJSON: string(p.Metadata),
			UpdatedAt:     timex.ToMillis(p.UpdatedAt),
		})
	}
	return req
}
