package models

import "time"

// SyncState is the bookkeeping shared by every record the engine pushes.
type SyncState struct {
	// LocalID is assigned on first persist and never changes.
	LocalID string

	// RemoteID is empty until the server accepted the record once.
	// It is assigned at most once.
	RemoteID string

	// Dirty marks local mutations not yet acknowledged by the server.
	Dirty bool

	// LastSyncedAt is the last acknowledgment time; zero if never synced.
	LastSyncedAt time.Time

	// Version grows on every local mutation. Marking a record synced only
	// clears Dirty when the stored version still matches the pushed one.
	Version int64
}

// Synced reports whether the record was acknowledged at least once.
func (s SyncState) Synced() bool { return !s.LastSyncedAt.IsZero() }

// SyncAck acknowledges one record of an accepted batch: the version that
// was pushed and the remote id the server assigned, if any.
type SyncAck struct {
	LocalID  string
	Version  int64
	RemoteID string
}
