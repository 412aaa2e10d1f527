// Package store defines the snapshot persistence interface for the
// valuation engine. The snapshot is an opaque serialized blob — the store
// never interprets it. Implementations include PostgreSQL (single-row
// table), Redis (single key), and in-memory (default and for testing).
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("store: snapshot not found")

// Store persists the full session snapshot. There is no partial or
// incremental persistence: every save replaces the whole blob.
type Store interface {
	// Load returns the most recently saved snapshot, or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot []byte) error

	// Clear removes the stored snapshot.
	Clear(ctx context.Context) error
}
