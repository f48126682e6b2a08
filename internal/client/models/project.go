package models

import (
	"fmt"
	"time"
)

// ProjectStatus is the lifecycle of a media project.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusRendering ProjectStatus = "rendering"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusFailed    ProjectStatus = "failed"
)

// ParseProjectStatus validates s.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch st := ProjectStatus(s); st {
	case ProjectStatusDraft, ProjectStatusRendering, ProjectStatusCompleted, ProjectStatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// EditMetadata is the serialized clip/effect/caption state of a project.
// The sync engine carries it as is and never parses it.
type EditMetadata string

// Project is a locally edited media project.
type Project struct {
	SyncState

	Title  string
	Status ProjectStatus

	// OwnerID is the owning account's LocalID.
	OwnerID string

	Metadata EditMetadata

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WireID is the id the server knows this project by: the remote id once
// assigned, the local id before that.
func (p Project) WireID() string {
	if p.RemoteID != "" {
		return p.RemoteID
	}
	return p.LocalID
}
