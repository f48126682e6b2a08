// Package accounts persists the local session account in SQLite.
//
// Save is the mutation path: it always leaves the row dirty and bumps its
// version. MarkSynced and AssignRemoteID are reserved for the sync engine.
// SetToken changes the credential without touching sync state.
package accounts
