package models

import "time"

// User is a server account. LocalID is the id the owning client gave it.
// PasswordHash is empty for accounts that were only ever synced, never
// registered.
type User struct {
	ID           string
	LocalID      string
	Email        string
	UserName     string
	IsPro        bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
