// Package users stores server accounts in PostgreSQL.
package users
