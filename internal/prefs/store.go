// Package prefs persists the console's durable client state: the session
// token and the language preference. Values survive restarts of the console.
package prefs

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("prefs store closed")

// Store is the durable key/value interface. All persisted client state goes through here.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
