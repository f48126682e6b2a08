// Package metadata stores small sync bookkeeping values (last run time, last
// result, last server time) in the sync_meta key/value table.
package metadata

import (
	"context"
)

const (
	KeyLastRunAt      = "last_run_at"
	KeyLastResult     = "last_result"
	KeyLastServerTime = "last_server_time"
	KeyLastSuccessAt  = "last_success_at"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
