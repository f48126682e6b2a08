// Package projects persists local media projects in SQLite.
//
// Save always leaves the row dirty and bumps its version. Sync bookkeeping
// columns (remote_id, last_synced_at) are written only by MarkSynced and
// AssignRemoteID.
package projects
