// Package wire defines the sync protocol documents exchanged between the
// client and the server, and their google.protobuf.Struct encoding used by
// the gRPC transport.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "reelsync.v1.SyncService"
	SyncMethod  = "/" + ServiceName + "/Sync"
	PingMethod  = "/" + ServiceName + "/Ping"
)

// User is the account as it travels on the wire.
type User struct {
	UserID   string `json:"userId,omitempty"`
	LocalID  string `json:"localId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsPro    bool   `json:"isPro"`
}

// Project is a project as it travels on the wire. ProjectID is the remote id
// or, for a project never accepted before, its local id.
type Project struct {
	ProjectID     string `json:"projectId"`
	LocalID       string `json:"localId"`
	UserID        string `json:"userId"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	ClipsMetaJSON string `json:"clipsMetaJson,omitempty"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// SyncRequest is the body of POST /{api}/sync.
type SyncRequest struct {
	User              *User     `json:"user,omitempty"`
	Projects          []Project `json:"projects"`
	LastSyncTimestamp int64     `json:"lastSyncTimestamp"`
}

// SyncResponse is the server reply.
type SyncResponse struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	UsersSynced     int               `json:"usersSynced"`
	ProjectsSynced  int               `json:"projectsSynced"`
	ServerTimestamp int64             `json:"serverTimestamp"`
	Permanent       bool              `json:"permanent,omitempty"`
	AssignedIDs     map[string]string `json:"assignedIds,omitempty"`
}

// AuthRequest is the body of the register and login endpoints.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// AuthResponse carries an issued access token.
type AuthResponse struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
}

// ErrorResponse is returned by the server on non-sync failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToStruct converts a JSON-tagged value into a structpb.Struct by way of its
// JSON form.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("to map: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return s, nil
}

// FromStruct decodes s into v, the inverse of ToStruct.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("nil struct")
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
