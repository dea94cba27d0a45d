package store

import (
	"context"
	"time"
)

// Store is the keyed-store capability set the room engine consumes.
// Every operation is atomic for its single key; there are no
// cross-key transactions, callers serialize multi-key sequences
// themselves.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error

	ListAppend(ctx context.Context, key string, values ...string) error
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ListPopLast(ctx context.Context, key string) (string, error)
	ListTrim(ctx context.Context, key string, start, stop int64) error

	SetAdd(ctx context.Context, key string, members ...string) error
	// SetReplaceAll deletes the set and re-adds the given members.
	// This is the remove-by-value substitute: callers filter the
	// membership themselves and hold the room lock around the call.
	SetReplaceAll(ctx context.Context, key string, members []string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
	SetCard(ctx context.Context, key string) (int64, error)

	Keys(ctx context.Context, pattern string) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}
