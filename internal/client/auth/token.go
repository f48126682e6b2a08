// Package auth supplies bearer credentials for outgoing sync requests.
package auth

import (
	"context"

	"github.com/dmitrijs2005/reelsync/internal/client/models"
)

// TokenSupplier returns the current session's bearer token, if any.
// A missing token is not an error.
type TokenSupplier interface {
	Token(ctx context.Context) (string, bool)
}

// Func adapts a function to TokenSupplier.
type Func func(ctx context.Context) (string, bool)

func (f Func) Token(ctx context.Context) (string, bool) { return f(ctx) }

// Static always returns the same token; an empty token means none.
type Static string

func (s Static) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

// None never supplies a token.
var None TokenSupplier = Static("")

type AccountSource interface {
	CurrentAccount(ctx context.Context) (*models.Account, error)
}

// StoreSupplier reads the token of the session account on every call.
type StoreSupplier struct {
	src AccountSource
}

func NewStoreSupplier(src AccountSource) *StoreSupplier {
	return &StoreSupplier{src: src}
}

// Token reports false when there is no account, the account has no token,
// or the lookup fails.
func (s *StoreSupplier) Token(ctx context.Context) (string, bool) {
	acc, err := s.src.CurrentAccount(ctx)
	if err != nil || acc == nil || acc.Token == "" {
		return "", false
	}
	return acc.Token, true
}
