// Package projects stores synced projects in PostgreSQL with
// last-writer-wins updates keyed on the client edit time.
package projects
