// Package services holds the local mutation paths of the client: editing the
// session account and projects. Every mutation leaves the record dirty for
// the next sync run; none of them touch sync bookkeeping.
package services
