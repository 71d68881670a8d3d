// Package results archives backtest artifacts (result summaries, trade
// logs, equity curves) to a cold storage backend.
package results

import "context"

// Backend is a flat key/value object store for run artifacts.
type Backend interface {
	// Put stores data under the given key.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves data stored under the given key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object under the given key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object exists under the given key.
	Exists(ctx context.Context, key string) (bool, error)
}
