// Package models defines the locally persisted records the sync engine
// tracks: accounts and projects, both carrying sync bookkeeping.
package models
