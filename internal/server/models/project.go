package models

import "time"

// Project statuses accepted by the server.
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusRendering = "rendering"
	ProjectStatusCompleted = "completed"
	ProjectStatusFailed    = "failed"
)

func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusRendering, ProjectStatusCompleted, ProjectStatusFailed:
		return true
	}
	return false
}

// Project is the server copy of a client project. ID is the id the client
// first pushed it under. UpdatedAt is the client edit time used for
// last-writer-wins.
type Project struct {
	ID            string
	LocalID       string
	UserID        string
	Title         string
	Status        string
	ClipsMetaJSON string
	UpdatedAt     time.Time
	SyncedAt      time.Time
}
