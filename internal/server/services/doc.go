// Package services holds the server use cases: applying sync batches and
// registering or logging in users.
package services
