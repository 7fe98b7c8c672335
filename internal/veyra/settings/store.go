package settings

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the requested (namespace, key) has
// never been set.
var ErrNotFound = errors.New("settings: key not found")

// ErrUnknownNamespace is returned by Put when namespace is outside the
// closed set.
var ErrUnknownNamespace = errors.New("settings: unknown namespace")

// Store is the read/write interface for the settings table. A concrete
// SQLite-backed implementation lives in internal/veyra/store.
type Store interface {
	Get(ctx context.Context, namespace, key string) (Setting, error)
	Put(ctx context.Context, s Setting) error
	Delete(ctx context.Context, namespace, key string) error
	List(ctx context.Context, namespace string) ([]Setting, error)
}
