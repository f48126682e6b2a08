package models

import "time"

// Account is the single local session's user profile.
type Account struct {
	SyncState

	Email       string
	DisplayName string
	IsPro       bool

	// Token is the bearer credential, empty when logged out. Changing it
	// does not make the account dirty.
	Token string

	UpdatedAt time.Time
}
