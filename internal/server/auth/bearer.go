package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/reelsync/internal/common"
)

// BearerToken extracts the token from an authorization value. The scheme
// is matched case-insensitively.
func BearerToken(value string) (string, bool) {
	value = strings.TrimSpace(value)
	prefix := common.BearerPrefix
	if len(value) <= len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(value[len(prefix):])
	return token, token != ""
}

type ctxKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the id stored by WithUserID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
